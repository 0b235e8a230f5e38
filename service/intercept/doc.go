// Package intercept implements the mandatory gate between an agent's
// candidate tool calls and their side effects. Every invocation resolves its
// approval tier fresh, executes only under auto-approve and otherwise queues
// a pending action, returning an explicit Executed/Deferred/Failed outcome.
package intercept
