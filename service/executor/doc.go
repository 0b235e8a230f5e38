// Package executor implements post-approval execution: running a tool by
// name after a human decision, detached from the agent session that proposed
// it. Resolution goes through a restricted registry of factories rather than
// the live in-session registry.
package executor
