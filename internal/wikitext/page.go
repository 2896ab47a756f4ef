package wikitext

// Page records the first node of every branch already rendered on one output
// page. Sections that share a Page never print the same branch twice.
// A Page is not safe for concurrent use.
type Page struct {
	seen nodeSet
}

// NewPage returns an empty page.
func NewPage() *Page {
	return &Page{seen: nodeSet{}}
}

// Seen reports whether a branch starting at id was already rendered.
func (p *Page) Seen(id int) bool {
	return p.seen.has(id)
}

// Len returns the number of recorded branch starts.
func (p *Page) Len() int {
	return len(p.seen)
}

func (p *Page) mark(id int) {
	p.seen[id] = struct{}{}
}

func (p *Page) scope() nodeSet {
	return p.seen.clone()
}

type nodeSet map[int]struct{}

func (s nodeSet) has(id int) bool {
	_, ok := s[id]
	return ok
}

func (s nodeSet) clone() nodeSet {
	c := make(nodeSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}
