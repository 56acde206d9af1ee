package operators

// None applies no correction. Useful as a baseline for scenarios.
type None struct{}

func NewNone() *None {
	return &None{}
}

func (n *None) Apply(fxi float64) float64 {
	return fxi
}

func (n *None) Kappa(prev, next float64) float64 {
	return Kappa(prev, next)
}
