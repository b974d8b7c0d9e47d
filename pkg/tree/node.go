package tree

// Kind is the node type discriminator. The set is closed so the diff
// engine can match exhaustively.
type Kind uint8

const (
	KindElement   Kind = iota // tagged element with attributes and children
	KindText                  // text leaf
	KindComponent             // component placeholder resolved by the runtime
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// Attr is a single attribute. Values are opaque to the engine; event
// handlers are stored here as opaque references and invoked by the
// renderer collaborator, never by the engine itself.
type Attr struct {
	Name  string
	Value any
}

// Node is freshly produced render output: a plain nested record not yet
// resident in an arena. Application render functions build and return
// these; the diff engine commits them.
type Node struct {
	Kind     Kind
	Tag      string
	Attrs    []Attr
	Key      string
	Text     string
	Children []*Node
}

// El builds an element node.
func El(tag string, attrs []Attr, children ...*Node) *Node {
	return &Node{
		Kind:     KindElement,
		Tag:      tag,
		Attrs:    attrs,
		Children: children,
	}
}

// Text builds a text leaf.
func Text(text string) *Node {
	return &Node{
		Kind: KindText,
		Text: text,
	}
}

// Component builds a component placeholder with the given tag identity.
func Component(name string, attrs []Attr) *Node {
	return &Node{
		Kind:  KindComponent,
		Tag:   name,
		Attrs: attrs,
	}
}

// A builds an attribute.
func A(name string, value any) Attr {
	return Attr{Name: name, Value: value}
}

// WithKey sets the reconciliation key and returns the node.
func (n *Node) WithKey(key string) *Node {
	n.Key = key
	return n
}

// Record is a committed node resident in an Arena. Children are handles
// into the same arena.
type Record struct {
	Kind     Kind
	Tag      string
	Attrs    []Attr
	Key      string
	Text     string
	Children []Handle

	// fp is the fingerprint of the render output this record was last
	// reconciled against, used for the identical-subtree fast path.
	fp uint64
}

// Attr returns the named attribute value, if present.
func (r *Record) Attr(name string) (any, bool) {
	for _, a := range r.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}
