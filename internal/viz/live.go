package viz

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/san-kum/fresim/internal/sim"
)

// LiveRenderer prints one status line per step as a run progresses. With a
// positive frame rate, lines are throttled except on zone changes.
type LiveRenderer struct {
	out       io.Writer
	frameRate int
	lastFrame time.Time
	lastZone  sim.Zone
	history   []float64
	zones     []sim.Zone
}

func NewLiveRenderer(out io.Writer, frameRate int) *LiveRenderer {
	return &LiveRenderer{
		out:       out,
		frameRate: frameRate,
		history:   make([]float64, 0, 64),
		zones:     make([]sim.Zone, 0, 64),
	}
}

func (r *LiveRenderer) OnStep(s sim.Sample) {
	r.history = append(r.history, s.FXI)
	r.zones = append(r.zones, s.Zone)

	changed := s.Zone != r.lastZone
	r.lastZone = s.Zone

	if r.frameRate > 0 && !changed {
		if time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
			return
		}
	}
	r.lastFrame = time.Now()

	kappa := "-"
	if !math.IsNaN(s.Kappa) {
		kappa = fmt.Sprintf("%.4f", s.Kappa)
	}
	fmt.Fprintf(r.out, "step %4d  fxi %.6f  delta %+.6f  κ %s  %s  %s\n",
		s.Step, s.FXI, s.Delta, kappa,
		ZoneStyle(s.Zone).Render(fmt.Sprintf("%-6s", s.Zone)),
		Sparkline(r.history, r.zones, 24))
}
