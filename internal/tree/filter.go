package tree

// IDSet restricts emission to a subset of node ids.
type IDSet map[int]bool

// NewIDSet builds a set from ids.
func NewIDSet(ids ...int) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// Has reports whether id is in the set. A nil set contains nothing.
func (s IDSet) Has(id int) bool {
	return s[id]
}

// Filter returns the children of a node that remain visible under ids.
// If one child is in ids only that child is kept. If none is, every child
// is kept when subtree is true and none otherwise, turning the node into a
// leaf. A nil ids keeps everything.
func Filter(children []*Node, ids IDSet, subtree bool) []*Node {
	if len(children) == 0 {
		return nil
	}
	if ids == nil {
		return children
	}
	for _, c := range children {
		if ids.Has(c.ID) {
			return []*Node{c}
		}
	}
	if !subtree {
		return nil
	}
	return children
}

// PathTo returns the ids of the nodes from the root down to the node with
// the given id, both included.
func PathTo(root *Node, id int) (IDSet, error) {
	var path []int
	var visit func(n *Node) bool
	visit = func(n *Node) bool {
		path = append(path, n.ID)
		if n.ID == id {
			return true
		}
		for _, c := range n.Children {
			if visit(c) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	if root == nil || !visit(root) {
		_, err := Find(root, id)
		return nil, err
	}
	return NewIDSet(path...), nil
}
