// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gphunter1004/skm/internal/app"
	"github.com/gphunter1004/skm/internal/i18n"
	"github.com/gphunter1004/skm/internal/model"
)

// userDetailMsg carries a fetched directory entry's profile.
type userDetailMsg struct {
	profile model.Profile
	ok      bool
}

type usersModel struct {
	core      *app.App
	cursor    int
	filtering bool
	filter    textinput.Model
	detail    *model.Profile
}

func newUsersModel(core *app.App) usersModel {
	f := textinput.New()
	f.Prompt = "/"
	f.CharLimit = 64
	f.Width = 24
	return usersModel{core: core, filter: f}
}

func (m usersModel) Update(msg tea.Msg) (usersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filtering {
			switch msg.String() {
			case "enter", "esc":
				m.filtering = false
				m.filter.Blur()
				if msg.String() == "esc" {
					m.filter.SetValue("")
					m.core.Directory.SetFilter("")
					m.cursor = 0
				}
				return m, nil
			default:
				var cmd tea.Cmd
				m.filter, cmd = m.filter.Update(msg)
				m.core.Directory.SetFilter(m.filter.Value())
				m.cursor = 0
				return m, cmd
			}
		}

		if m.detail != nil {
			switch msg.String() {
			case "esc", "q", "enter":
				m.detail = nil
			}
			return m, nil
		}

		users := m.core.Directory.Users()
		switch msg.String() {
		case "/":
			m.filtering = true
			m.filter.Focus()
			return m, textinput.Blink
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(users)-1 {
				m.cursor++
			}
		case "s":
			m.core.Directory.SetSort(m.core.Directory.NextSort())
			m.cursor = 0
		case "r":
			return m, dispatchCmd(m.core, app.LoadUsersIntent{})
		case "enter":
			if m.cursor < len(users) {
				return m, m.detailCmd(users[m.cursor].ID)
			}
		case "x":
			if m.cursor < len(users) {
				u := users[m.cursor]
				return m, dispatchCmd(m.core, app.DeleteUserIntent{ID: u.ID, Username: u.Username})
			}
		}
		return m, nil

	case userDetailMsg:
		if msg.ok {
			p := msg.profile
			m.detail = &p
		}
		return m, nil
	}
	return m, nil
}

func (m usersModel) detailCmd(id int) tea.Cmd {
	core := m.core
	return func() tea.Msg {
		profile, ok := core.Directory.Detail(context.Background(), id)
		return userDetailMsg{profile: profile, ok: ok}
	}
}

func (m usersModel) View(width int) string {
	title := mainTitleStyle.Render("👥 " + i18n.T("users.title"))

	if m.detail != nil {
		return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			title, m.renderDetail(*m.detail),
			footerStyle.Render(AlignFooter(i18n.T("users.detail_footer"), "", width))))
	}

	var rows []string
	stats := m.core.Directory.Stats()
	rows = append(rows, helpStyle.Render(
		i18n.T("users.stats", stats.Total, stats.WithKeys, stats.Coverage)), "")

	users := m.core.Directory.Users()
	if len(users) == 0 {
		if m.core.Directory.Loaded() {
			rows = append(rows, helpStyle.Render(i18n.T("users.empty")))
		} else {
			rows = append(rows, helpStyle.Render(i18n.T("users.loading")))
		}
	}
	for i, u := range users {
		marker := "  "
		if i == m.cursor {
			marker = "▸ "
		}
		keyMark := errorStyle.Render("✗")
		if u.HasSSHKey {
			keyMark = successStyle.Render("✓")
		}
		role := ""
		if u.IsAdmin() {
			role = " " + specialStyle.Render(i18n.T("users.role_admin"))
		}
		line := fmt.Sprintf("%s%-20s %s%s", marker, truncateLine(u.Username, 20), keyMark, role)
		if i == m.cursor {
			rows = append(rows, selectedItemStyle.Render(line))
		} else {
			rows = append(rows, itemStyle.Render(line))
		}
	}

	var filterLine string
	if m.filtering {
		filterLine = m.filter.View()
	} else if m.filter.Value() != "" {
		filterLine = helpStyle.Render(i18n.T("users.filter_active", m.filter.Value()))
	}
	if filterLine != "" {
		rows = append(rows, "", filterLine)
	}

	pane := paneStyle.Width(max(48, width-6)).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	footer := footerStyle.Render(AlignFooter(i18n.T("users.footer"), "", width))
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, pane, footer))
}

func (m usersModel) renderDetail(p model.Profile) string {
	label := func(id string) string { return helpStyle.Render(i18n.T(id)) }

	rows := []string{
		titleStyle.Render(p.Username), "",
		fmt.Sprintf("%s %d", label("users.label_id"), p.ID),
		fmt.Sprintf("%s %s", label("users.label_role"), p.Role),
	}
	if !p.CreatedAt.IsZero() {
		rows = append(rows, fmt.Sprintf("%s %s", label("users.label_created"), p.CreatedAt.Format("2006-01-02 15:04")))
	}
	if p.Key != nil {
		rows = append(rows, "",
			fmt.Sprintf("%s %s %d", label("users.label_key"), p.Key.Algorithm, p.Key.Bits))
		if p.Key.Fingerprint != "" {
			rows = append(rows, fmt.Sprintf("%s %s", label("keys.label_fingerprint"), p.Key.Fingerprint))
		}
	} else {
		rows = append(rows, "", helpStyle.Render(i18n.T("users.no_key")))
	}
	return paneStyle.Width(60).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
