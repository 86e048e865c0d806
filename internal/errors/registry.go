package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Structural errors (E001-E009)
	// ============================================

	"E001": {
		Category: CategoryStructural,
		Message:  "unsupported node kind combination",
		Detail:   "The diff engine was asked to reconcile a live node against a description of a kind it cannot transition to. This indicates a bug in the engine or a hand-built description tree.",
	},
	"E002": {
		Category: CategoryStructural,
		Message:  "component rendered content where none existed",
		Detail:   "A component that previously rendered nothing produced content on re-render. Content presence must be stable across a component's lifetime.",
	},
	"E003": {
		Category: CategoryStructural,
		Message:  "component rendered no content where content existed",
		Detail:   "A component that previously rendered content produced nothing on re-render. Content presence must be stable across a component's lifetime.",
	},
	"E004": {
		Category: CategoryStructural,
		Message:  "broken parent/child linkage",
		Detail:   "A patch named a child that is not linked to the parent it was emitted for.",
	},

	// ============================================
	// Reentrancy errors (E010-E019)
	// ============================================

	"E010": {
		Category: CategoryReentrancy,
		Message:  "too many cycles",
		Detail:   "Commands dispatched from lifecycle hooks cascaded more than 3 update cycles within one synchronous command. This usually means a hook unconditionally dispatches on every update.",
	},

	// ============================================
	// Debug assertions (E020-E029)
	// ============================================

	"E020": {
		Category: CategoryAssertion,
		Message:  "duplicate sibling keys",
		Detail:   "Two siblings share the same reconciliation key. Keys must be unique within a child list.",
	},
	"E021": {
		Category: CategoryAssertion,
		Message:  "description mutated after freeze",
		Detail:   "A description's payload changed after it was produced. Descriptions are immutable once rendered.",
	},

	// ============================================
	// Contract errors (E030-E039)
	// ============================================

	"E030": {
		Category: CategoryContract,
		Message:  "unknown component type",
		Detail:   "A description referenced a component type name that is not registered with the engine.",
	},
	"E031": {
		Category: CategoryContract,
		Message:  "invalid plugin contract",
		Detail:   "A plugin registered a method that collides with an existing command or does not match the expected signature.",
	},
}
