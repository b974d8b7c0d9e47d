// Package tree holds Reflow's committed UI tree: an arena of node records
// addressed by generation-checked handles, and the diff engine that turns
// an old subtree plus a freshly rendered one into an ordered patch list.
//
// Render output is a plain nested *Node value produced by application code.
// Committing it moves it into the Arena as Records whose children are
// Handles. A Handle stays valid until its node is freed; after that every
// use fails with ErrHandleExpired, even if the slot has been recycled,
// because the slot's generation has moved on.
//
// Child reconciliation is keyed only when every child on both sides
// carries a key: matching is then by key with a minimal move set. If any
// child lacks a key, diffing falls back to strict positional pairing,
// which can produce replace/move churn when lists are reordered; callers
// that reorder lists should key their children.
package tree
