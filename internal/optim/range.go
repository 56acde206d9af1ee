package optim

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const maxRangePoints = 10000

// ParseRange reads "name=start:stop:step" or "name=v1,v2,...". The stop
// value is included when the step lands on it.
func ParseRange(s string) (string, []float64, error) {
	name, spec, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || spec == "" {
		return "", nil, fmt.Errorf("invalid range %q: want name=start:stop:step or name=v1,v2", s)
	}

	if strings.Contains(spec, ":") {
		parts := strings.Split(spec, ":")
		if len(parts) != 3 {
			return "", nil, fmt.Errorf("invalid range %q: want start:stop:step", s)
		}
		nums := make([]float64, 3)
		for i, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return "", nil, fmt.Errorf("invalid range %q: %w", s, err)
			}
			nums[i] = v
		}
		values, err := Linspace(nums[0], nums[1], nums[2])
		if err != nil {
			return "", nil, fmt.Errorf("invalid range %q: %w", s, err)
		}
		return name, values, nil
	}

	var values []float64
	for _, p := range strings.Split(spec, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid range %q: %w", s, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

// Linspace steps from start to stop inclusive. Values are computed as
// start+i*step, rounded to 12 decimals, so 0.1:0.9:0.1 yields 9 points.
func Linspace(start, stop, step float64) ([]float64, error) {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("step must be positive, got %v", step)
	}
	if stop < start {
		return nil, fmt.Errorf("stop %v below start %v", stop, start)
	}
	n := int(math.Floor((stop-start)/step+1e-9)) + 1
	if n > maxRangePoints {
		return nil, fmt.Errorf("range has %d points, limit is %d", n, maxRangePoints)
	}
	values := make([]float64, n)
	for i := range values {
		values[i] = math.Round((start+float64(i)*step)*1e12) / 1e12
	}
	return values, nil
}
