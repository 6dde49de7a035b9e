package workflow

// Selection is the set of resource ids picked from the current findings.
// It is always a subset of the universe it was created with; ids are kept
// in the order they were picked.
type Selection struct {
	universe []string
	known    map[string]struct{}
	picked   map[string]struct{}
	order    []string
}

// NewSelection creates an empty selection bounded to the given ids.
func NewSelection(universe []string) *Selection {
	s := &Selection{
		universe: make([]string, 0, len(universe)),
		known:    make(map[string]struct{}, len(universe)),
		picked:   make(map[string]struct{}),
	}
	for _, id := range universe {
		if _, dup := s.known[id]; dup {
			continue
		}
		s.known[id] = struct{}{}
		s.universe = append(s.universe, id)
	}
	return s
}

// Toggle adds id if absent and removes it if present.
// Ids outside the universe are ignored.
func (s *Selection) Toggle(id string) {
	if _, ok := s.known[id]; !ok {
		return
	}
	if _, ok := s.picked[id]; ok {
		delete(s.picked, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return
	}
	s.picked[id] = struct{}{}
	s.order = append(s.order, id)
}

// SelectAll selects every id, or clears the selection when it is already full.
func (s *Selection) SelectAll() {
	if s.AllSelected() {
		s.Clear()
		return
	}
	s.picked = make(map[string]struct{}, len(s.universe))
	s.order = make([]string, 0, len(s.universe))
	for _, id := range s.universe {
		s.picked[id] = struct{}{}
		s.order = append(s.order, id)
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.picked = make(map[string]struct{})
	s.order = nil
}

// AllSelected mirrors the "select all" checkbox: checked only when every id
// is picked and there is at least one.
func (s *Selection) AllSelected() bool {
	return len(s.universe) > 0 && len(s.picked) == len(s.universe)
}

func (s *Selection) Contains(id string) bool {
	_, ok := s.picked[id]
	return ok
}

func (s *Selection) Len() int {
	return len(s.picked)
}

func (s *Selection) Empty() bool {
	return len(s.picked) == 0
}

// IDs returns a copy of the selected ids in pick order.
func (s *Selection) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Set returns the selected ids as a lookup set.
func (s *Selection) Set() map[string]struct{} {
	out := make(map[string]struct{}, len(s.picked))
	for id := range s.picked {
		out[id] = struct{}{}
	}
	return out
}
