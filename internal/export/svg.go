package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/fresim/internal/sim"
)

var zoneFill = map[sim.Zone]string{
	sim.ZoneStable: "#00cc66",
	sim.ZoneWatch:  "#ffcc00",
	sim.ZoneBreach: "#ff3333",
}

// WriteSVG draws the fxi series as a polyline with one dot per step,
// coloured by zone. Dashed lines mark fxi_min, equilibrium and fxi_max.
func WriteSVG(w io.Writer, res *sim.Result, width, height float64) error {
	if res.Len() == 0 {
		return fmt.Errorf("empty result")
	}

	const pad = 20.0
	lo, hi := res.Thresholds.FXIMin, res.Thresholds.FXIMax
	for _, v := range res.FXISeries {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	steps := float64(max(res.Len()-1, 1))
	x := func(i int) float64 { return pad + float64(i)/steps*(width-2*pad) }
	y := func(v float64) float64 { return height - pad - (v-lo)/(hi-lo)*(height-2*pad) }

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, ref := range []float64{res.Thresholds.FXIMin, sim.Equilibrium, res.Thresholds.FXIMax} {
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#444444" stroke-dasharray="4 4"/>
`, pad, y(ref), width-pad, y(ref)))
	}

	points := make([]string, res.Len())
	for i, v := range res.FXISeries {
		points[i] = fmt.Sprintf("%.1f,%.1f", x(i), y(v))
	}
	sb.WriteString(fmt.Sprintf(`<polyline fill="none" stroke="#cccccc" points="%s"/>
`, strings.Join(points, " ")))

	for i, v := range res.FXISeries {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="2.5" fill="%s"/>
`, x(i), y(v), zoneFill[res.Zones[i]]))
	}

	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
