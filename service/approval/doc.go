// Package approval implements the durable queue of tool calls awaiting a
// human decision. Approve and reject re-check the pending status at the
// moment of the state-changing write, so two concurrent resolutions of the
// same action produce exactly one winner; the loser observes
// ErrActionNotPending.
package approval
