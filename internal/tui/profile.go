// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gphunter1004/skm/internal/app"
	"github.com/gphunter1004/skm/internal/i18n"
)

type profileModel struct {
	core       *app.App
	editing    bool
	focusIndex int
	inputs     []textinput.Model // 0: username, 1: new password
}

func newProfileModel(core *app.App) profileModel {
	m := profileModel{
		core:   core,
		inputs: make([]textinput.Model, 2),
	}

	var t textinput.Model
	for i := range m.inputs {
		t = textinput.New()
		t.Cursor.Style = focusedStyle
		t.CharLimit = 64
		t.Width = 32

		switch i {
		case 0:
			t.Prompt = i18n.T("profile.prompt_username") + " "
		case 1:
			t.Prompt = i18n.T("profile.prompt_password") + " "
			t.EchoMode = textinput.EchoPassword
			t.EchoCharacter = '•'
			t.Placeholder = i18n.T("profile.placeholder_password")
		}
		m.inputs[i] = t
	}
	return m
}

func (m profileModel) Update(msg tea.Msg) (profileModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if !m.editing {
		switch keyMsg.String() {
		case "e":
			m.editing = true
			if profile, ok := m.core.Profile.Current(); ok {
				m.inputs[0].SetValue(profile.Username)
			}
			m.inputs[1].SetValue("")
			m.setFocus(0)
			return m, textinput.Blink
		case "r":
			return m, dispatchCmd(m.core, app.LoadProfileIntent{})
		}
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		m.editing = false
		return m, nil

	case "tab", "shift+tab", "enter", "up", "down":
		s := keyMsg.String()
		if s == "enter" && m.focusIndex == len(m.inputs) {
			username := strings.TrimSpace(m.inputs[0].Value())
			password := m.inputs[1].Value()
			m.editing = false
			return m, dispatchCmd(m.core, app.UpdateProfileIntent{Username: username, Password: password})
		}
		if s == "up" || s == "shift+tab" {
			m.focusIndex--
		} else {
			m.focusIndex++
		}
		if m.focusIndex > len(m.inputs) {
			m.focusIndex = 0
		} else if m.focusIndex < 0 {
			m.focusIndex = len(m.inputs)
		}
		m.setFocus(m.focusIndex)
		return m, nil
	}

	var cmds []tea.Cmd
	for i := range m.inputs {
		var cmd tea.Cmd
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *profileModel) setFocus(index int) {
	m.focusIndex = index
	for i := range m.inputs {
		if i == index {
			m.inputs[i].Focus()
			m.inputs[i].TextStyle = focusedStyle
		} else {
			m.inputs[i].Blur()
			m.inputs[i].TextStyle = lipgloss.NewStyle()
		}
	}
}

func (m profileModel) View(width int) string {
	title := mainTitleStyle.Render("👤 " + i18n.T("profile.title"))
	label := func(id string) string { return helpStyle.Render(i18n.T(id)) }

	var rows []string
	profile, loaded := m.core.Profile.Current()
	if !loaded {
		rows = append(rows, helpStyle.Render(i18n.T("profile.loading")))
	} else {
		rows = append(rows,
			fmt.Sprintf("%s %s", label("profile.label_username"), profile.Username),
			fmt.Sprintf("%s %s", label("users.label_role"), profile.Role),
		)
		if profile.Key != nil {
			rows = append(rows, fmt.Sprintf("%s %s %d",
				label("users.label_key"), profile.Key.Algorithm, profile.Key.Bits))
		} else {
			rows = append(rows, helpStyle.Render(i18n.T("users.no_key")))
		}
	}

	footerText := i18n.T("profile.footer")
	if m.editing {
		rows = append(rows, "", titleStyle.Render(i18n.T("profile.edit_title")))
		for i := range m.inputs {
			rows = append(rows, m.inputs[i].View())
		}
		button := "[ " + i18n.T("profile.button_save") + " ]"
		if m.focusIndex == len(m.inputs) {
			button = selectedItemStyle.Render(button)
		}
		rows = append(rows, "", button)
		footerText = i18n.T("profile.footer_edit")
	}

	pane := paneStyle.Width(48).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	footer := footerStyle.Render(AlignFooter(footerText, "", width))
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, pane, footer))
}
