// Package reactive implements Reflow's fine-grained reactivity: signals,
// memos, effects, the dependency graph that links them, and the flush
// scheduler that re-runs dirty computations in topological depth order.
//
// All state lives in a Store. A Store is single-threaded by contract: one
// flush pipeline owns it, and independent UI roots hold independent Stores.
// There is no package-level shared state other than ID generation inside
// each Store.
//
// Reads are tracked: when a computation (memo, effect, or component render)
// reads a signal during its run, the store records a dependency edge. The
// edge set is rebuilt on every run, so conditional reads never leave stale
// edges behind. Writes never execute anything synchronously; they mark
// subscribers dirty and the next Flush settles the graph glitch-free.
package reactive
