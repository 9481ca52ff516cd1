package crawler

import "github.com/nao1215/gopherdl/internal/gopher"

// resourceSet is an insertion-ordered set of resources keyed by
// identity. Order is preserved so crawl results are deterministic for a
// fixed menu graph.
type resourceSet struct {
	seen  map[gopher.Identity]struct{}
	order []*gopher.Resource
}

func newResourceSet() *resourceSet {
	return &resourceSet{seen: make(map[gopher.Identity]struct{})}
}

// add inserts res and reports whether it was newly added. A resource
// with an identity already in the set leaves the set unchanged.
func (s *resourceSet) add(res *gopher.Resource) bool {
	id := res.Identity()
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, res)
	return true
}

func (s *resourceSet) len() int {
	return len(s.order)
}

// resources returns the members in insertion order.
func (s *resourceSet) resources() []*gopher.Resource {
	return s.order
}
