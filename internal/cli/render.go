package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/viant/procman"
	"github.com/viant/procman/model/process"
	"github.com/viant/procman/service/dao/snapshot"
)

var (
	primaryColor = lipgloss.Color("#7C3AED")
	mutedColor   = lipgloss.Color("#6B7280")
	warningColor = lipgloss.Color("#F59E0B")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	warnStyle   = lipgloss.NewStyle().Foreground(warningColor)
)

var priorityNames = map[process.Priority]string{
	process.PriorityLow:      "low",
	process.PriorityNormal:   "normal",
	process.PriorityHigh:     "high",
	process.PriorityCritical: "critical",
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderDomain(domain *procman.Domain, dispatched map[process.ID]int) string {
	current, previous, idle := domain.Current(), domain.Previous(), domain.Idle()
	t := newTable("PID", "ENTRY", "PRIORITY", "STATE", "DISPATCHED", "ROLE")
	for _, proc := range domain.Processes() {
		t.Row(strconv.FormatUint(uint64(proc.ID), 10), proc.Entry.String(), priorityNames[proc.Priority],
			string(proc.State()), strconv.Itoa(dispatched[proc.ID]), roles(proc.ID, pid(current), pid(previous), pid(idle)))
	}
	title := titleStyle.Render(fmt.Sprintf("%s  %d/%d", domain.Name(), domain.Len(), domain.Cap()))
	counters := domain.Progress()
	stats := mutedStyle.Render(fmt.Sprintf("created %d  removed %d  rejected %d  dispatched %d  idle %d",
		counters.Created, counters.Removed, counters.Rejected, counters.Dispatched, counters.Idle))
	return lipgloss.JoinVertical(lipgloss.Left, title, stats, t.Render())
}

func renderSnapshot(aSnapshot *snapshot.Snapshot) string {
	t := newTable("PID", "ENTRY", "PRIORITY", "STATE", "ROLE")
	for _, entry := range aSnapshot.Entries {
		t.Row(strconv.FormatUint(uint64(entry.ID), 10), entry.Entry.String(), priorityNames[entry.Priority],
			string(entry.State), roles(entry.ID, aSnapshot.Current, aSnapshot.Previous, aSnapshot.Idle))
	}
	title := titleStyle.Render(fmt.Sprintf("%s  %d/%d", aSnapshot.Domain, len(aSnapshot.Entries), aSnapshot.Capacity))
	meta := mutedStyle.Render(aSnapshot.ID + "  " + aSnapshot.TakenAt.Format("2006-01-02 15:04:05.000"))
	return lipgloss.JoinVertical(lipgloss.Left, title, meta, t.Render())
}

func roles(id process.ID, current, previous, idle *process.ID) string {
	var ret []string
	if current != nil && *current == id {
		ret = append(ret, "current")
	}
	if previous != nil && *previous == id {
		ret = append(ret, "previous")
	}
	if idle != nil && *idle == id {
		ret = append(ret, "idle")
	}
	return strings.Join(ret, ",")
}

func pid(proc *process.Process) *process.ID {
	return snapshot.IDOf(proc)
}
