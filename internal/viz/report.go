package viz

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/san-kum/fresim/internal/sim"
)

// StepTable renders one row per recorded index. With limit > 0 only the
// first limit rows are shown, followed by a count of the rest.
func StepTable(res *sim.Result, limit int) string {
	n := res.Len()
	shown := n
	if limit > 0 && limit < n {
		shown = limit
	}

	rows := make([][]string, 0, shown)
	zones := make([]sim.Zone, 0, shown)
	for i := 0; i < shown; i++ {
		kappa := "-"
		if k, ok := res.Kappa(i); ok {
			kappa = strconv.FormatFloat(k, 'f', 4, 64)
		}
		rows = append(rows, []string{
			strconv.Itoa(i),
			strconv.FormatFloat(res.FXISeries[i], 'f', 6, 64),
			strconv.FormatFloat(res.DeltaSeries[i], 'f', 6, 64),
			kappa,
			string(res.Zones[i]),
		})
		zones = append(zones, res.Zones[i])
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#444466"))).
		Headers("STEP", "FXI", "DELTA", "KAPPA", "ZONE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(CurrentTheme.Accent)
			}
			if col == 4 && row >= 0 && row < len(zones) {
				return ZoneStyle(zones[row]).Padding(0, 1)
			}
			if col == 0 {
				return s.Align(lipgloss.Right)
			}
			return s
		})

	out := t.String()
	if shown < n {
		out += "\n" + KeyHint.Render(fmt.Sprintf("... %d more steps", n-shown))
	}
	return out
}

// Summary renders the run outcome and metrics as label/value lines.
func Summary(res *sim.Result) string {
	var sb strings.Builder
	value := metricValue(CurrentTheme)

	line := func(label, v string) {
		sb.WriteString(MetricLabel.Render(fmt.Sprintf("%-16s", label)))
		sb.WriteString(v)
		sb.WriteString("\n")
	}

	final := res.Final()
	line("steps", value.Render(strconv.Itoa(res.StepsTaken)))
	line("final fxi", value.Render(strconv.FormatFloat(final.FXI, 'f', 6, 64)))
	line("final delta", value.Render(strconv.FormatFloat(final.Delta, 'f', 6, 64)))
	line("final zone", ZoneStyle(final.Zone).Render(string(final.Zone)))

	if res.BreachOccurred && res.BreachStep != nil {
		line("breach", ZoneStyle(sim.ZoneBreach).Render(
			fmt.Sprintf("%s at step %d", res.BreachType, *res.BreachStep)))
	} else {
		line("breach", ZoneStyle(sim.ZoneStable).Render("none"))
	}

	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		line(name, value.Render(strconv.FormatFloat(res.Metrics[name], 'f', 4, 64)))
	}

	return sb.String()
}
