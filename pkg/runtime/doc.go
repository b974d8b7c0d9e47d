// Package runtime ties the reactive graph to the tree differ. A Root owns
// one Store and one Arena and drives the update pipeline: mounted
// components re-render when their tracked signals change, render output is
// diffed against the committed tree, and each settled flush hands one
// ordered patch list to the renderer collaborator. Roots are independent;
// nothing is shared between two Roots, and each is single-goroutine like
// the Store it owns.
package runtime
