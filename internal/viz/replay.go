package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/fresim/internal/sim"
)

type TickMsg time.Time

const defaultReplayRate = 8

// ReplayModel steps through a finished run.
type ReplayModel struct {
	title   string
	res     *sim.Result
	cursor  int
	playing bool
	rate    int
	theme   Theme
	width   int
}

func NewReplayModel(title string, res *sim.Result) ReplayModel {
	return ReplayModel{
		title: title,
		res:   res,
		rate:  defaultReplayRate,
		theme: CurrentTheme,
		width: 80,
	}
}

// WithRate sets the playback speed in steps per second.
func (m ReplayModel) WithRate(stepsPerSecond int) ReplayModel {
	if stepsPerSecond > 0 {
		m.rate = stepsPerSecond
	}
	return m
}

func (m ReplayModel) Cursor() int       { return m.cursor }
func (m ReplayModel) Playing() bool     { return m.playing }
func (m ReplayModel) ThemeName() string { return m.theme.Name }

func (m ReplayModel) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.rate), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m ReplayModel) Init() tea.Cmd { return nil }

func (m ReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	last := m.res.Len() - 1

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case TickMsg:
		if !m.playing {
			return m, nil
		}
		if m.cursor >= last {
			m.playing = false
			return m, nil
		}
		m.cursor++
		return m, m.tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.playing = !m.playing
			if m.playing {
				if m.cursor >= last {
					m.cursor = 0
				}
				return m, m.tick()
			}
		case "right", "l":
			m.playing = false
			if m.cursor < last {
				m.cursor++
			}
		case "left", "h":
			m.playing = false
			if m.cursor > 0 {
				m.cursor--
			}
		case "home", "g":
			m.playing = false
			m.cursor = 0
		case "end", "G":
			m.playing = false
			m.cursor = last
		case "b":
			if m.res.BreachStep != nil {
				m.playing = false
				m.cursor = *m.res.BreachStep
			}
		case "t":
			m.theme = nextTheme(m.theme.Name)
		}
	}
	return m, nil
}

func (m ReplayModel) View() string {
	var sb strings.Builder
	s := m.res.Sample(m.cursor)
	accent := lipgloss.NewStyle().Foreground(m.theme.Accent).Bold(true)

	sb.WriteString(HeaderStyle.Render(fmt.Sprintf("replay %s", m.title)))
	sb.WriteString("\n\n")

	kappa := "-"
	if k, ok := m.res.Kappa(m.cursor); ok {
		kappa = fmt.Sprintf("%.4f", k)
	}

	body := strings.Join([]string{
		MetricLabel.Render("step  ") + accent.Render(fmt.Sprintf("%d / %d", m.cursor, m.res.Len()-1)),
		MetricLabel.Render("fxi   ") + accent.Render(fmt.Sprintf("%.6f", s.FXI)),
		MetricLabel.Render("delta ") + accent.Render(fmt.Sprintf("%+.6f", s.Delta)),
		MetricLabel.Render("kappa ") + accent.Render(kappa),
		MetricLabel.Render("zone  ") + zoneStyle(m.theme, s.Zone).Render(string(s.Zone)),
	}, "\n")
	sb.WriteString(Panel.Render(body))
	sb.WriteString("\n\n")

	sparkWidth := max(min(m.width-4, 60), 10)
	sb.WriteString(Sparkline(m.res.FXISeries[:m.cursor+1], m.res.Zones[:m.cursor+1], sparkWidth))
	sb.WriteString("\n")

	progress := 1.0
	if m.res.Len() > 1 {
		progress = float64(m.cursor) / float64(m.res.Len()-1)
	}
	sb.WriteString(ProgressBar(progress, sparkWidth))
	sb.WriteString("\n")

	if m.res.BreachOccurred && m.res.BreachStep != nil {
		marker := "breach ahead"
		if m.cursor >= *m.res.BreachStep {
			marker = "breached"
		}
		sb.WriteString(zoneStyle(m.theme, sim.ZoneBreach).Render(
			fmt.Sprintf("%s: %s at step %d", marker, m.res.BreachType, *m.res.BreachStep)))
		sb.WriteString("\n")
	}

	status := "paused"
	if m.playing {
		status = "playing"
	}
	sb.WriteString("\n")
	sb.WriteString(KeyHint.Render(fmt.Sprintf("[%s] space play · ←/→ step · home/end · b breach · t theme (%s) · q quit",
		status, m.theme.Name)))
	sb.WriteString("\n")

	return sb.String()
}
