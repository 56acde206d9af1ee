package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/fresim/internal/sim"
)

var (
	Panel       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444466")).Padding(0, 1)
	MetricLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899"))
	KeyHint     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688")).Italic(true)
)

var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#ffffff")).
	BorderStyle(lipgloss.NormalBorder()).
	BorderBottom(true).
	BorderForeground(lipgloss.Color("#444466"))

// ZoneStyle colors text by zone using the current theme.
func ZoneStyle(z sim.Zone) lipgloss.Style {
	return zoneStyle(CurrentTheme, z)
}

func zoneStyle(th Theme, z sim.Zone) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch z {
	case sim.ZoneStable:
		return s.Foreground(th.Stable)
	case sim.ZoneWatch:
		return s.Foreground(th.Watch)
	case sim.ZoneBreach:
		return s.Foreground(th.Breach)
	default:
		return s.Foreground(th.Muted)
	}
}

func metricValue(th Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(th.Accent).Bold(true)
}

// ProgressBar renders percent of width cells filled.
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	filled = max(0, min(filled, width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Sparkline renders values as block characters, one per value, colored by
// the matching zone. Values beyond width keep only the most recent ones.
func Sparkline(values []float64, zones []sim.Zone, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	if len(values) > width {
		values = values[len(values)-width:]
		zones = zones[len(zones)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var sb strings.Builder
	for i, v := range values {
		idx := int((v - lo) / rng * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		sb.WriteString(ZoneStyle(zones[i]).Render(string(chars[idx])))
	}
	return sb.String()
}

func Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return KeyHint.Render(left + " ◆ " + right)
}
