package watch

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"restartctl/internal/restart"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	completeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(paneStyle.Render(m.setsView()))
	b.WriteString("\n")
	if m.snap.ActiveSet >= 0 {
		b.WriteString(paneStyle.Render(m.checklistView()))
		b.WriteString("\n")
	}
	b.WriteString(paneStyle.Render(m.activityView()))
	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m *Model) headerView() string {
	session := m.snap.SessionID
	if session == "" {
		session = "(none)"
	}
	head := titleStyle.Render("night restart") +
		dimStyle.Render(fmt.Sprintf("  session %s  role %s  state %s", session, m.snap.Role, m.snap.State))
	if m.busy {
		head += "  " + m.loader.View()
	}
	if m.snap.Polling {
		head += dimStyle.Render("  polling")
	}
	return head
}

func (m *Model) setsView() string {
	var rows []string
	for i := 0; i < restart.SetCount; i++ {
		label := fmt.Sprintf("set %d", i+1)
		name := ""
		if def, ok := restart.DefaultSet(i); ok {
			name = def.InfraName
		}
		line := fmt.Sprintf("%s  %-18s", label, name)
		if i >= len(m.snap.Sets) {
			rows = append(rows, dimStyle.Render(line+"  not started"))
			continue
		}
		set := m.snap.Sets[i]
		if set.InfraName != "" {
			line = fmt.Sprintf("%s  %-18s", label, set.InfraName)
		}
		switch set.Status {
		case restart.SetCompleted:
			detail := "complete"
			if set.AckTime != "" {
				detail += "  ack " + set.AckTime
			}
			rows = append(rows, completeStyle.Render(line+"  "+detail))
		case restart.SetStarted:
			rows = append(rows, activeStyle.Render(fmt.Sprintf("%s  step %d/%d", line, set.CurrentStep, restart.StepCount)))
		default:
			rows = append(rows, dimStyle.Render(line+"  not started"))
		}
	}
	return strings.Join(rows, "\n")
}

func (m *Model) checklistView() string {
	var rows []string
	for _, step := range restart.Checklist {
		marker := "[ ]"
		style := dimStyle
		switch {
		case m.snap.Steps[step.Number-1].Done:
			marker = "[x]"
			style = completeStyle
		case step.Number == m.snap.CurrentStep:
			marker = "[>]"
			style = activeStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s %2d. %s", marker, step.Number, step.Title)))
	}
	return strings.Join(rows, "\n")
}

func (m *Model) activityView() string {
	entries := m.coord.Activity().Entries()
	if len(entries) == 0 {
		return dimStyle.Render("no activity yet")
	}
	if len(entries) > maxActivityRows {
		entries = entries[:maxActivityRows]
	}
	var rows []string
	for _, entry := range entries {
		line := fmt.Sprintf("%s  %-9s %s",
			entry.At.Format("15:04:05"), entry.Category, entry.Message)
		if entry.Category == restart.ActivityAPIError {
			rows = append(rows, errorStyle.Render(line))
		} else {
			rows = append(rows, dimStyle.Render(line))
		}
	}
	return strings.Join(rows, "\n")
}

func (m *Model) footerView() string {
	status := m.status
	if status != "" {
		if m.errored {
			status = errorStyle.Render(status)
		} else {
			status = dimStyle.Render(status)
		}
		status += "\n"
	}
	return status + dimStyle.Render("s start set  c complete step  a acknowledge  n new session  r refresh  q quit")
}
