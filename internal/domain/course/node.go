package course

// Kind discriminates the node types of a course content tree
type Kind int

const (
	KindSection Kind = iota
	KindModule
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindSection:
		return "section"
	case KindModule:
		return "module"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// Node is one element of a course content tree. The tree is built once at the
// API boundary from the raw course contents response; a node of KindFile is
// always a leaf and is the only kind carrying file fields.
type Node struct {
	Kind     Kind
	Name     string
	Children []*Node

	// File fields, set only on KindFile nodes
	FileURL      string
	FileName     string
	FileSize     int64
	TimeModified int64
}

// NewSection creates a section node
func NewSection(name string) *Node {
	return &Node{Kind: KindSection, Name: name}
}

// NewModule creates a module node
func NewModule(name string) *Node {
	return &Node{Kind: KindModule, Name: name}
}

// NewFile creates a downloadable file leaf
func NewFile(name, url string, size, modified int64) *Node {
	return &Node{
		Kind:         KindFile,
		Name:         name,
		FileURL:      url,
		FileName:     name,
		FileSize:     size,
		TimeModified: modified,
	}
}

// IsFile reports whether the node is a downloadable file leaf
func (n *Node) IsFile() bool {
	return n.Kind == KindFile && n.FileURL != ""
}

// Walk visits n and all descendants in depth-first pre-order, preserving the
// section and module order of the underlying API response.
func (n *Node) Walk(visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, child := range n.Children {
		child.Walk(visit)
	}
}
