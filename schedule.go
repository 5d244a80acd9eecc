package boidswarm

// A Rule is the grid and weight of a neighbor based steering rule.
// A zero Factor disables the rule.
type Rule struct {
	Grid   Grid
	Factor float64
}

// An EdgeRule is the margin and weight of edge avoidance.
// A zero Factor disables the rule.
type EdgeRule struct {
	Margin float64
	Factor float64
}

// A Schedule is the sequence of rules applied during a frame.
// Rules run in a fixed order, each one blending against the result of
// the previous one: alignment, cohesion, separation, edge avoidance.
type Schedule struct {
	Alignment  Rule
	Cohesion   Rule
	Separation Rule
	Edge       EdgeRule
}

// DefaultSchedule returns coarse grids for alignment and cohesion
// and a fine grid for separation.
func DefaultSchedule() Schedule {
	return Schedule{
		Alignment:  Rule{Grid: Grid{Rows: 8, Cols: 8, Depth: 8}, Factor: 0.02},
		Cohesion:   Rule{Grid: Grid{Rows: 4, Cols: 4, Depth: 4}, Factor: 0.01},
		Separation: Rule{Grid: Grid{Rows: 20, Cols: 20, Depth: 20}, Factor: 0.06},
		Edge:       EdgeRule{Margin: 10, Factor: 0.1},
	}
}

// Run applies the rules of the schedule to s. It does not integrate positions.
func (sc Schedule) Run(s *Swarm) {
	if sc.Alignment.Factor != 0 {
		s.Alignment(sc.Alignment.Grid, sc.Alignment.Factor)
	}
	if sc.Cohesion.Factor != 0 {
		s.Cohesion(sc.Cohesion.Grid, sc.Cohesion.Factor)
	}
	if sc.Separation.Factor != 0 {
		s.Separation(sc.Separation.Grid, sc.Separation.Factor)
	}
	if sc.Edge.Factor != 0 {
		s.EdgeAvoidance(sc.Edge.Margin, sc.Edge.Factor)
	}
}
