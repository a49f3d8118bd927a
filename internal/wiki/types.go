// Defines the page tree types.

package wiki

// Node is one page of a document tree.
type Node struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Content  string  `json:"content,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// Document is the root of a page tree. A synthetic root has no content of
// its own and only hosts the top-level pages in Children.
type Document struct {
	Node
	WorkspaceID string `json:"workspaceId"`
	Synthetic   bool   `json:"synthetic,omitempty"`
}

// Walk calls fn for the root and every page in pre-order.
func (d *Document) Walk(fn func(n *Node, depth int)) {
	fn(&d.Node, 0)
	walkNodes(d.Children, 1, fn)
}

func walkNodes(nodes []*Node, depth int, fn func(n *Node, depth int)) {
	for _, n := range nodes {
		fn(n, depth)
		walkNodes(n.Children, depth+1, fn)
	}
}

// PageCount returns the number of pages below the root.
func (d *Document) PageCount() int {
	count := 0
	walkNodes(d.Children, 1, func(*Node, int) { count++ })
	return count
}
