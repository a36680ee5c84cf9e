package stats

// Set keys Groups by endpoint label and maintains the global group across
// all of them. Label iteration order is first-observation order so output
// is reproducible run to run.
type Set struct {
	groups map[string]*Group
	order  []string
	global *Group
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{
		groups: make(map[string]*Group),
		global: &Group{},
	}
}

// Observe records one duration sample under the given endpoint label and in
// the global group.
func (s *Set) Observe(label string, value float64, isError bool) {
	g, ok := s.groups[label]
	if !ok {
		g = &Group{}
		s.groups[label] = g
		s.order = append(s.order, label)
	}
	g.Push(value, isError)
	s.global.Push(value, isError)
}

// Labels returns endpoint labels in first-observation order.
func (s *Set) Labels() []string { return s.order }

// Group returns the group for a label, or nil if never observed.
func (s *Set) Group(label string) *Group { return s.groups[label] }

// Global returns the run-wide group.
func (s *Set) Global() *Group { return s.global }

// Finalize computes per-endpoint summaries (keyed by label) plus the global
// summary.
func (s *Set) Finalize() (map[string]Summary, Summary) {
	perEndpoint := make(map[string]Summary, len(s.groups))
	for label, g := range s.groups {
		perEndpoint[label] = g.Finalize()
	}
	return perEndpoint, s.global.Finalize()
}
