// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gphunter1004/skm/internal/app"
	"github.com/gphunter1004/skm/internal/i18n"
)

// authMode selects between the login and register forms.
type authMode int

const (
	modeLogin authMode = iota
	modeRegister
)

// authDoneMsg signals that an auth round trip finished. registered is set
// when a registration succeeded, so the login form can be prefilled.
type authDoneMsg struct {
	registered bool
}

type authModel struct {
	core       *app.App
	mode       authMode
	focusIndex int
	inputs     []textinput.Model // 0: username, 1: password
	busy       bool
}

func newAuthModel(core *app.App) authModel {
	m := authModel{
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
			t.Prompt = i18n.T("auth.prompt_username") + " "
			t.Placeholder = "user"
		case 1:
			t.Prompt = i18n.T("auth.prompt_password") + " "
			t.EchoMode = textinput.EchoPassword
			t.EchoCharacter = '•'
		}
		m.inputs[i] = t
	}
	m.inputs[0].Focus()
	m.inputs[0].TextStyle = focusedStyle
	return m
}

func (m authModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m authModel) Update(msg tea.Msg) (authModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			if m.mode == modeRegister {
				m.mode = modeLogin
				m.setFocus(0)
			}
			return m, nil

		case "ctrl+r":
			if m.mode == modeLogin {
				m.mode = modeRegister
				m.inputs[1].SetValue("")
				m.setFocus(0)
			}
			return m, nil

		case "tab", "shift+tab", "enter", "up", "down":
			s := msg.String()

			if s == "enter" && m.focusIndex == len(m.inputs) {
				return m.submit()
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

	case authDoneMsg:
		m.busy = false
		if msg.registered {
			m.mode = modeLogin
			m.inputs[0].SetValue(m.core.Auth.LastRegistered())
			m.inputs[1].SetValue("")
			m.setFocus(1)
		}
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

// submit runs the login or registration round trip off the UI goroutine.
func (m authModel) submit() (authModel, tea.Cmd) {
	username := strings.TrimSpace(m.inputs[0].Value())
	password := m.inputs[1].Value()
	mode := m.mode
	core := m.core
	m.busy = true

	return m, func() tea.Msg {
		ctx := context.Background()
		if mode == modeRegister {
			ok := core.Dispatch(ctx, app.RegisterIntent{Username: username, Password: password})
			return authDoneMsg{registered: ok}
		}
		core.Dispatch(ctx, app.LoginIntent{Username: username, Password: password})
		return authDoneMsg{}
	}
}

func (m *authModel) setFocus(index int) {
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

func (m authModel) View(width int) string {
	title := "🔑 " + i18n.T("auth.login_title")
	submitLabel := i18n.T("auth.button_login")
	help := i18n.T("auth.help_login")
	if m.mode == modeRegister {
		title = "🔑 " + i18n.T("auth.register_title")
		submitLabel = i18n.T("auth.button_register")
		help = i18n.T("auth.help_register")
	}

	var rows []string
	rows = append(rows, titleStyle.Render(title), "")
	for i := range m.inputs {
		rows = append(rows, m.inputs[i].View())
	}

	button := "[ " + submitLabel + " ]"
	if m.focusIndex == len(m.inputs) {
		button = selectedItemStyle.Render(button)
	} else {
		button = itemStyle.Render(button)
	}
	rows = append(rows, "", button)

	if m.busy {
		rows = append(rows, "", helpStyle.Render(i18n.T("auth.working")))
	}

	pane := paneStyle.Width(48).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	footer := footerStyle.Render(AlignFooter(help, "", width))
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, pane, "", footer))
}
