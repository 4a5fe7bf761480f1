// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gphunter1004/skm/internal/app"
	"github.com/gphunter1004/skm/internal/i18n"
	"github.com/gphunter1004/skm/internal/model"
)

// copiedMsg reports a clipboard copy attempt.
type copiedMsg struct {
	what string
	err  error
}

type keysModel struct {
	core        *app.App
	showInstall bool
	copied      string
	copyErr     error
}

func newKeysModel(core *app.App) keysModel {
	return keysModel{core: core}
}

func (m keysModel) Update(msg tea.Msg) (keysModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "g":
			return m, dispatchCmd(m.core, app.CreateKeyIntent{})
		case "d":
			return m, dispatchCmd(m.core, app.DeleteKeyIntent{})
		case "r":
			m.copied = ""
			m.copyErr = nil
			return m, dispatchCmd(m.core, app.RefreshKeyIntent{})
		case "i":
			m.showInstall = !m.showInstall
			return m, nil
		case "c":
			return m, m.copyCmd("public", func(rec model.KeyRecord) string { return rec.PublicKey })
		case "e":
			return m, m.copyCmd("pem", func(rec model.KeyRecord) string { return rec.PEMPrivateKey })
		case "p":
			return m, m.copyCmd("ppk", func(rec model.KeyRecord) string { return rec.PPKPrivateKey })
		}

	case copiedMsg:
		m.copied = msg.what
		m.copyErr = msg.err
		return m, nil
	}
	return m, nil
}

// copyCmd copies one key field to the system clipboard.
func (m keysModel) copyCmd(what string, field func(model.KeyRecord) string) tea.Cmd {
	rec, ok := m.core.Keys.Current()
	if !ok {
		return nil
	}
	value := field(rec)
	if value == "" {
		return nil
	}
	return func() tea.Msg {
		return copiedMsg{what: what, err: clipboard.WriteAll(value)}
	}
}

func (m keysModel) View(width int) string {
	title := mainTitleStyle.Render("🔑 " + i18n.T("keys.title"))

	var rows []string
	rec, ok := m.core.Keys.Current()
	switch {
	case m.core.Keys.Busy():
		rows = append(rows, helpStyle.Render(i18n.T("keys.loading")))
	case !ok:
		rows = append(rows, i18n.T("keys.empty"), "",
			helpStyle.Render(i18n.T("keys.empty_hint")))
	default:
		rows = append(rows, m.renderRecord(rec, width)...)
	}

	pane := paneStyle.Width(max(48, width-6)).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	footer := footerStyle.Render(AlignFooter(i18n.T("keys.footer"), "", width))
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, pane, footer))
}

func (m keysModel) renderRecord(rec model.KeyRecord, width int) []string {
	label := func(id string) string { return helpStyle.Render(i18n.T(id)) }

	var rows []string
	rows = append(rows,
		fmt.Sprintf("%s %s", label("keys.label_algorithm"), rec.Algorithm),
		fmt.Sprintf("%s %d", label("keys.label_bits"), rec.Bits),
	)
	if rec.Fingerprint != "" {
		rows = append(rows, fmt.Sprintf("%s %s", label("keys.label_fingerprint"), rec.Fingerprint))
	}
	if !rec.CreatedAt.IsZero() {
		rows = append(rows, fmt.Sprintf("%s %s", label("keys.label_created"), rec.CreatedAt.Format("2006-01-02 15:04")))
	}

	rows = append(rows, "", label("keys.label_public_key"))
	rows = append(rows, truncateLine(rec.PublicKey, max(40, width-12)))

	material := []struct {
		id      string
		present bool
	}{
		{"keys.material_pem", rec.PEMPrivateKey != ""},
		{"keys.material_ppk", rec.PPKPrivateKey != ""},
	}
	var parts []string
	for _, mt := range material {
		if mt.present {
			parts = append(parts, successStyle.Render(i18n.T(mt.id)))
		} else {
			parts = append(parts, errorStyle.Render(i18n.T(mt.id)))
		}
	}
	rows = append(rows, "", label("keys.label_material")+" "+strings.Join(parts, "  "))

	if warnings := m.core.Keys.Warnings(); len(warnings) > 0 {
		rows = append(rows, "", specialStyle.Render(i18n.T("keys.label_warnings")))
		for _, w := range warnings {
			rows = append(rows, specialStyle.Render("  • "+w))
		}
	}

	if m.copied != "" {
		if m.copyErr != nil {
			rows = append(rows, "", errorStyle.Render(i18n.T("keys.copy_failed", m.copyErr)))
		} else {
			rows = append(rows, "", successStyle.Render(i18n.T("keys.copied", m.copied)))
		}
	}

	if m.showInstall {
		cmds := app.InstallCommandsFor(rec)
		rows = append(rows, "", titleStyle.Render(i18n.T("keys.install_title")))
		install := []struct {
			id  string
			cmd string
		}{
			{"keys.install_public", cmds.PublicKey},
			{"keys.install_authorized", cmds.AuthorizedKeys},
			{"keys.install_pem", cmds.PEM},
			{"keys.install_ppk", cmds.PPK},
		}
		for _, it := range install {
			if it.cmd == "" {
				continue
			}
			rows = append(rows, label(it.id))
			rows = append(rows, truncateLine(it.cmd, max(40, width-12)), "")
		}
	}

	return rows
}

// truncateLine shortens s to fit a single row. Counts runes so multibyte
// comments and translated labels are never cut mid-sequence.
func truncateLine(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

// dispatchCmd runs an intent off the UI goroutine and asks the main model
// to re-read controller state when it finishes.
func dispatchCmd(core *app.App, intent app.Intent) tea.Cmd {
	return func() tea.Msg {
		core.Dispatch(context.Background(), intent)
		return refreshMsg{}
	}
}
