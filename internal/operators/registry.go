package operators

import (
	"fmt"
	"sort"

	"github.com/san-kum/fresim/internal/sim"
)

var builders = map[string]func(alpha float64) (sim.Operator, error){
	"linear": func(alpha float64) (sim.Operator, error) { return NewLinear(alpha) },
	"none":   func(float64) (sim.Operator, error) { return NewNone(), nil },
}

// Get builds the operator registered under name.
func Get(name string, alpha float64) (sim.Operator, error) {
	fn, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown operator: %s", name)
	}
	return fn(alpha)
}

func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
