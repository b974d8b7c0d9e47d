package tree

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes a render output subtree. Records remember the
// fingerprint they were last reconciled against, so diffing a subtree
// against structurally identical output skips it entirely and emits no
// patches. Function-valued attributes (event handlers) hash by pointer
// identity: fresh closures defeat the fast path, which keeps handler
// rebinding correct at the cost of re-diffing interactive nodes.
func Fingerprint(n *Node) uint64 {
	d := xxhash.New()
	hashNode(d, n)
	return d.Sum64()
}

func hashNode(d *xxhash.Digest, n *Node) {
	var buf [4]byte

	_, _ = d.Write([]byte{byte(n.Kind)})
	hashString(d, n.Tag)
	hashString(d, n.Key)
	hashString(d, n.Text)

	binary.LittleEndian.PutUint32(buf[:], uint32(len(n.Attrs)))
	_, _ = d.Write(buf[:])
	for _, a := range n.Attrs {
		hashString(d, a.Name)
		hashString(d, attrValueString(a.Value))
	}

	binary.LittleEndian.PutUint32(buf[:], uint32(len(n.Children)))
	_, _ = d.Write(buf[:])
	for _, c := range n.Children {
		hashNode(d, c)
	}
}

func hashString(d *xxhash.Digest, s string) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(len(s)))
	_, _ = d.Write(buf[:])
	_, _ = d.WriteString(s)
}

// attrValueString renders an attribute value for hashing and display.
// Functions render by identity.
func attrValueString(v any) string {
	if v == nil {
		return ""
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Func {
		return fmt.Sprintf("func@%x", rv.Pointer())
	}
	return fmt.Sprintf("%v", v)
}
