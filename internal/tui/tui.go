// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

// This file is the main entry point for the TUI, containing the top-level
// model that routes messages to the active sub-view and renders the shared
// chrome: the toast line and the confirmation dialog.
package tui

import (
	"context"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gphunter1004/skm/internal/app"
	"github.com/gphunter1004/skm/internal/i18n"
	"github.com/gphunter1004/skm/internal/logging"
	"github.com/gphunter1004/skm/internal/model"
)

// mainModel is the top-level model. The active view is not tracked here;
// the application router owns it, and View reads it back every frame so
// forced logouts and role evictions take effect without TUI bookkeeping.
type mainModel struct {
	core   *app.App
	auth   authModel
	keys   keysModel
	users  usersModel
	prof   profileModel
	width  int
	height int

	toast    *model.Notification
	toastSeq int

	dialog     *dialog
	dialogResp chan bool
}

func newMainModel(core *app.App) mainModel {
	return mainModel{
		core:  core,
		auth:  newAuthModel(core),
		keys:  newKeysModel(core),
		users: newUsersModel(core),
		prof:  newProfileModel(core),
	}
}

// Init starts the application core: session restore, validation, and the
// periodic revalidation loop.
func (m mainModel) Init() tea.Cmd {
	core := m.core
	return tea.Batch(m.auth.Init(), func() tea.Msg {
		core.Start(context.Background())
		return refreshMsg{}
	})
}

func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.answerDialog(false)
			return m, tea.Quit
		}

		if m.dialog != nil {
			switch msg.String() {
			case "left", "right", "tab", "h", "l":
				m.dialog.Toggle()
			case "enter":
				m.answerDialog(m.dialog.Confirmed())
			case "esc", "q":
				m.answerDialog(false)
			}
			return m, nil
		}

		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case notificationMsg:
		n := msg.n
		if n.Timeout <= 0 {
			n.Timeout = 3 * time.Second
		}
		m.toast = &n
		m.toastSeq++
		seq := m.toastSeq
		return m, tea.Tick(n.Timeout, func(time.Time) tea.Msg {
			return toastExpiredMsg{seq: seq}
		})

	case clearNotificationMsg:
		m.toast = nil
		return m, nil

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}
		return m, nil

	case confirmRequestMsg:
		// A second request while one is open would deadlock its caller;
		// refuse it instead.
		if m.dialog != nil {
			msg.resp <- false
			return m, nil
		}
		m.dialog = newDialog(msg.title, msg.message,
			i18n.T("dialog.yes"), i18n.T("dialog.no"))
		m.dialogResp = msg.resp
		return m, nil

	case closeModalMsg:
		m.answerDialog(false)
		return m, nil

	case refreshMsg:
		return m, nil
	}

	return m.delegate(msg)
}

// handleGlobalKey processes navigation and logout keys. They are live only
// while the active view is not capturing text input.
func (m *mainModel) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	current := m.core.Router.Current()
	if current == app.LoggedOutView {
		return nil, false
	}
	if m.typing(current) {
		return nil, false
	}

	switch msg.String() {
	case "1":
		return dispatchCmd(m.core, app.NavigateIntent{Target: app.KeysView}), true
	case "2":
		return dispatchCmd(m.core, app.NavigateIntent{Target: app.UsersView}), true
	case "3":
		return dispatchCmd(m.core, app.NavigateIntent{Target: app.ProfileView}), true
	case "ctrl+l":
		return dispatchCmd(m.core, app.LogoutIntent{}), true
	case "q":
		if current == app.KeysView {
			return tea.Quit, true
		}
	}
	return nil, false
}

// typing reports whether the active view currently owns the keyboard for
// free-text entry.
func (m *mainModel) typing(current app.View) bool {
	switch current {
	case app.UsersView:
		return m.users.filtering
	case app.ProfileView:
		return m.prof.editing
	default:
		return false
	}
}

// delegate forwards a message to the active sub-view.
func (m mainModel) delegate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.core.Router.Current() {
	case app.LoggedOutView:
		m.auth, cmd = m.auth.Update(msg)
	case app.KeysView:
		m.keys, cmd = m.keys.Update(msg)
	case app.UsersView:
		m.users, cmd = m.users.Update(msg)
	case app.ProfileView:
		m.prof, cmd = m.prof.Update(msg)
	}
	return m, cmd
}

func (m mainModel) View() string {
	var body string
	switch m.core.Router.Current() {
	case app.KeysView:
		body = m.keys.View(m.width)
	case app.UsersView:
		body = m.users.View(m.width)
	case app.ProfileView:
		body = m.prof.View(m.width)
	default:
		body = m.auth.View(m.width)
	}

	if m.toast != nil {
		body = lipgloss.JoinVertical(lipgloss.Left, m.renderToast(*m.toast), body)
	}

	if m.dialog != nil {
		overlay := m.dialog.Render()
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay)
		}
		return overlay
	}

	return body
}

func (m mainModel) renderToast(n model.Notification) string {
	style := successStyle
	switch n.Severity {
	case model.SeverityError:
		style = errorStyle
	case model.SeverityWarning:
		style = specialStyle
	case model.SeverityInfo:
		style = helpStyle
	}
	return style.Padding(0, 1).Render(n.Message)
}

// answerDialog resolves the open dialog, if any, unblocking the controller
// waiting on the reply.
func (m *mainModel) answerDialog(confirmed bool) {
	if m.dialogResp != nil {
		m.dialogResp <- confirmed
	}
	m.dialog = nil
	m.dialogResp = nil
}

// Run wires the application core to a Bubble Tea program and blocks until
// the user quits.
func Run(opts app.Options) {
	b := newBridge()
	opts.Notifier = b
	opts.Surface = b
	opts.Confirmer = b

	core := app.New(opts)
	defer core.Close()

	p := tea.NewProgram(newMainModel(core), tea.WithAltScreen())
	b.Bind(func(msg interface{}) { p.Send(msg) })

	if _, err := p.Run(); err != nil {
		logging.Errorf("TUI run error: %v", err)
		os.Exit(1)
	}
}
