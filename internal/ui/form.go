package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned by RunForm when the user leaves without submitting.
var ErrCancelled = errors.New("cancelled")

// FormResult holds the values submitted through the form.
type FormResult struct {
	Folder string
	Output string
}

type formModel struct {
	inputs    []textinput.Model
	focus     int
	submitted bool
	cancelled bool
	err       string
}

func newFormModel(folder, output string) formModel {
	labels := []struct{ placeholder, value string }{
		{"folder holding the unpacked backup", folder},
		{"CSV file to write", output},
	}
	inputs := make([]textinput.Model, len(labels))
	for i, l := range labels {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = l.placeholder
		in.SetValue(l.value)
		in.CharLimit = 0
		inputs[i] = in
	}
	inputs[0].Focus()
	return formModel{inputs: inputs}
}

func (m formModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m formModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyTab, tea.KeyDown:
			return m.setFocus(m.focus + 1), nil
		case tea.KeyShiftTab, tea.KeyUp:
			return m.setFocus(m.focus - 1), nil
		case tea.KeyEnter:
			if m.focus < len(m.inputs)-1 {
				return m.setFocus(m.focus + 1), nil
			}
			if m.value(0) == "" || m.value(1) == "" {
				m.err = "both fields are required"
				return m, nil
			}
			m.submitted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m formModel) setFocus(i int) formModel {
	n := len(m.inputs)
	m.focus = ((i % n) + n) % n
	for j := range m.inputs {
		if j == m.focus {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return m
}

func (m formModel) value(i int) string {
	return strings.TrimSpace(m.inputs[i].Value())
}

func (m formModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n" + TitleStyle.Render("  android-sms2csv") + "\n")
	b.WriteString(DimStyle.Render("  extract SMS/MMS from an unpacked Android backup to CSV") + "\n\n")
	for i, label := range []string{"Source folder", "Output file"} {
		cursor := "  "
		if i == m.focus {
			cursor = LabelStyle.Render("❯ ")
		}
		fmt.Fprintf(&b, "  %s%s\n    %s\n\n", cursor, LabelStyle.Render(label), m.inputs[i].View())
	}
	if m.err != "" {
		b.WriteString("  " + ErrStyle.Render(m.err) + "\n")
	}
	b.WriteString(DimStyle.Render("  tab/↑/↓ move · enter next/start · esc cancel") + "\n")
	return b.String()
}

// RunForm asks for the source folder and output file, starting from the given
// values. It reads keys from the controlling terminal even when stdin is not
// one.
func RunForm(folder, output string) (FormResult, error) {
	p := tea.NewProgram(newFormModel(folder, output), tea.WithInputTTY())
	final, err := p.Run()
	if err != nil {
		return FormResult{}, err
	}
	fm := final.(formModel)
	if !fm.submitted {
		return FormResult{}, ErrCancelled
	}
	return FormResult{Folder: fm.value(0), Output: fm.value(1)}, nil
}
