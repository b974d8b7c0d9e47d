package tree

// Op is the patch operation type.
type Op uint8

const (
	OpInsert         Op = iota + 1 // insert a new node under Parent at Index
	OpRemove                       // remove the node at Target
	OpMove                         // move Target to Index under Parent
	OpSetAttr                      // set attribute Name to Value on Target
	OpRemoveAttr                   // remove attribute Name from Target
	OpReplaceText                  // replace Target's text content
	OpReplaceSubtree               // replace Target's whole subtree with NewNode
)

// String returns the string representation of the Op.
func (op Op) String() string {
	switch op {
	case OpInsert:
		return "Insert"
	case OpRemove:
		return "Remove"
	case OpMove:
		return "Move"
	case OpSetAttr:
		return "SetAttr"
	case OpRemoveAttr:
		return "RemoveAttr"
	case OpReplaceText:
		return "ReplaceText"
	case OpReplaceSubtree:
		return "ReplaceSubtree"
	default:
		return "Unknown"
	}
}

// Patch is one atomic tree mutation for a renderer to apply. Each patch
// carries everything needed to apply it without consulting the tree.
//
// Patch lists are ordered: applying them sequentially never requires a
// handle that a later patch introduces. Inserts and moves of a parent
// precede operations on its children.
type Patch struct {
	Op Op

	// Target is the node the operation addresses. For Insert it is the
	// handle of the newly committed node.
	Target Handle

	// Parent and Index position Insert and Move operations.
	Parent Handle
	Index  int

	// Name and Value carry attribute operations.
	Name  string
	Value any

	// Text carries ReplaceText.
	Text string

	// Node is a snapshot of the committed record for Insert and
	// ReplaceSubtree; its Children handles are filled by later Inserts.
	Node *Record

	// NewNode is the replacement subtree's handle for ReplaceSubtree.
	NewNode Handle
}
