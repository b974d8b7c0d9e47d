package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Reactive Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryReactive,
		Message:  "Signal used after disposal",
		Detail:   "The signal was disposed, usually because its owning scope was unmounted. Reads and writes on a disposed signal fail and perform no graph mutation.",
		DocURL:   "https://reflow-ui.dev/docs/errors/E001",
	},
	"E002": {
		Category: CategoryReactive,
		Message:  "Cyclic dependency rejected",
		Detail:   "A dependency edge would close a cycle in the reactive graph. The offending read is discarded and the last known value is used. Reactivity must be acyclic by construction.",
		DocURL:   "https://reflow-ui.dev/docs/errors/E002",
	},
	"E003": {
		Category: CategoryReactive,
		Message:  "Computation disposed",
		Detail:   "The computation was disposed while still scheduled. It will not execute again.",
		DocURL:   "https://reflow-ui.dev/docs/errors/E003",
	},

	// ============================================
	// Scheduler Errors (E020-E039)
	// ============================================

	"E020": {
		Category: CategoryScheduler,
		Message:  "Computation failed",
		Detail:   "An application render or effect body returned an error or panicked. The computation is marked Errored and skipped on subsequent flushes until reset; the rest of the flush continues.",
		DocURL:   "https://reflow-ui.dev/docs/errors/E020",
	},
	"E021": {
		Category: CategoryScheduler,
		Message:  "Flush ordering invariant violated",
		Detail:   "The scheduler observed a depth-ordering contradiction mid-flush. This is an internal error; the flush is aborted rather than committing an inconsistent tree.",
		DocURL:   "https://reflow-ui.dev/docs/errors/E021",
	},
	"E022": {
		Category: CategoryScheduler,
		Message:  "Flush re-entered",
		Detail:   "Flush was called while a flush was already running. Writes made during a flush join the in-progress run; they must not start a nested one.",
		DocURL:   "https://reflow-ui.dev/docs/errors/E022",
	},

	// ============================================
	// Tree Errors (E040-E059)
	// ============================================

	"E040": {
		Category: CategoryTree,
		Message:  "Arena handle expired",
		Detail:   "The handle's generation does not match the slot's current generation. The node it referred to was freed and the slot may have been recycled.",
		DocURL:   "https://reflow-ui.dev/docs/errors/E040",
	},
	"E041": {
		Category: CategoryTree,
		Message:  "Dangling child handle",
		Detail:   "A committed node references a child handle that is no longer live. This indicates a diff engine bug; after a flush completes every child must be live.",
		DocURL:   "https://reflow-ui.dev/docs/errors/E041",
	},

	// ============================================
	// Transport Errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategoryTransport,
		Message:  "Patch feed write failed",
		Detail:   "Writing a patch frame to a feed subscriber failed. The subscriber is dropped; the flush itself is unaffected.",
		DocURL:   "https://reflow-ui.dev/docs/errors/E060",
	},

	// ============================================
	// CLI Errors (E080-E099)
	// ============================================

	"E080": {
		Category: CategoryCLI,
		Message:  "Invalid benchmark scenario",
		Detail:   "The scenario file could not be parsed or contains out-of-range values.",
		DocURL:   "https://reflow-ui.dev/docs/errors/E080",
	},
}

// Lookup returns the template for a code, if registered.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
