package domain

// Branch is the derived, read-only structure produced by walking a dialogue
// graph from a start node. Steps are in emission order: the spine up to a
// fork, the forking step carrying its sibling branches, then (when the
// siblings rejoin) the continuation from the rejoin node.
type Branch []Step

// Step is one element of a Branch.
type Step struct {
	Node DialogueNode `json:"node"`

	// Fork is set on the step whose node has more than one successor.
	Fork *Fork `json:"fork,omitempty"`

	// Cycle marks a back-reference to a node already on this path.
	// The node is not expanded again.
	Cycle bool `json:"cycle,omitempty"`
}

// Fork holds the sibling branches leaving a node, in declared successor order.
type Fork struct {
	Branches []Branch `json:"branches"`

	// RejoinID is the node where every sibling converges, nil when the
	// siblings never meet again.
	RejoinID *int `json:"rejoin_id,omitempty"`
}

// FirstID returns the id of the first step, and false for an empty branch.
func (b Branch) FirstID() (int, bool) {
	if len(b) == 0 {
		return 0, false
	}
	return b[0].Node.ID, true
}

// IDs returns the ids of the top-level steps in order.
func (b Branch) IDs() []int {
	ids := make([]int, 0, len(b))
	for _, s := range b {
		ids = append(ids, s.Node.ID)
	}
	return ids
}

// IndexOf returns the position of the first top-level step with the given id, or -1.
func (b Branch) IndexOf(id int) int {
	for i, s := range b {
		if s.Node.ID == id {
			return i
		}
	}
	return -1
}

// Walk visits every step of the branch depth-first, sibling branches included.
func (b Branch) Walk(fn func(Step)) {
	for _, s := range b {
		fn(s)
		if s.Fork != nil {
			for _, sub := range s.Fork.Branches {
				sub.Walk(fn)
			}
		}
	}
}
