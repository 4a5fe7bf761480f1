// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// dialog is a modal confirmation box with a title, message, and two buttons.
// The left button is the affirmative one; focus starts on the right (cancel)
// so a stray enter never destroys anything.
type dialog struct {
	title       string
	message     string
	buttonLeft  string
	buttonRight string
	focusRight  bool
	width       int
}

func newDialog(title, message, buttonLeft, buttonRight string) *dialog {
	return &dialog{
		title:       title,
		message:     message,
		buttonLeft:  buttonLeft,
		buttonRight: buttonRight,
		focusRight:  true,
		width:       60,
	}
}

// Toggle flips button focus.
func (d *dialog) Toggle() {
	d.focusRight = !d.focusRight
}

// Confirmed reports whether the affirmative (left) button is focused.
func (d *dialog) Confirmed() bool {
	return !d.focusRight
}

// Render produces the dialog box output with auto-calculated height.
func (d *dialog) Render() string {
	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("60")).
		Bold(true).
		Width(d.width)

	header := headerStyle.Render(" " + d.title)

	messageStyle := lipgloss.NewStyle().
		Width(d.width-4).
		Padding(1, 2, 0, 2)

	message := messageStyle.Render(d.message)

	body := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		message,
		d.renderButtonArea(),
	)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Width(d.width)

	return boxStyle.Render(body)
}

// renderButtonArea produces the button row with the focused button lit.
func (d *dialog) renderButtonArea() string {
	leftStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("239")).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("239")).
		Padding(0, 3, 0, 3)

	rightStyle := leftStyle

	if d.focusRight {
		rightStyle = rightStyle.
			Background(lipgloss.Color("60")).
			BorderForeground(lipgloss.Color("60"))
	} else {
		leftStyle = leftStyle.
			Background(lipgloss.Color("60")).
			BorderForeground(lipgloss.Color("60"))
	}

	buttonRow := lipgloss.JoinHorizontal(lipgloss.Center,
		leftStyle.Render(d.buttonLeft), "  ", rightStyle.Render(d.buttonRight))

	return lipgloss.NewStyle().Padding(1, 2, 1, 2).Render(buttonRow)
}
