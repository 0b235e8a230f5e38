// Package action defines the pending-action record persisted by the approval
// queue together with its one-way status machine.
package action
