// Package order contains the order aggregate and its lifecycle state machine.
//
// The aggregate is pure: state changes validate against the transition table
// and return a list of Effect descriptors (cache invalidation, notification,
// webhook dispatch, history append) instead of performing I/O. The command
// handlers in internal/core/application own the execution of those effects.
//
// State transitions:
//
//	Pending ──> Preparing ──> Delivering ──> Completed
//	   │            │
//	   └────────────┴──> Cancelled
//
// Entering Delivering requires an assigned delivery person, and a verified
// receipt when the payment method demands one. Completed and Cancelled are
// terminal; archiving is a separate flag permitted only in terminal states.
//
// The status history is the single source of truth for the current status:
// the status field is a projection of the last history entry and the
// aggregate maintains that invariant on every accepted transition.
package order
