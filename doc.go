// Package toolgate provides an approval gate for LLM agent tool calls.
//
// Every tool invocation is intercepted and resolved against a policy table:
// auto-approved tools execute immediately, everything else is parked as a
// pending action until a user approves, rejects or lets it expire. All
// resolved invocations leave an append-only audit trail with hashed
// arguments and capped result previews.
//
// The gate is designed to be embedded in host applications. End-users
// typically interact via the high-level Service façade exposed by the root
// package:
//
//	gate := toolgate.New()
//	_ = gate.Start(ctx)
//	outcome := gate.Interceptor().Invoke(ctx, "file_write", args, actor)
//	switch outcome.Kind {
//	case intercept.KindExecuted:  // use outcome.Result
//	case intercept.KindDeferred:  // surface outcome.ActionID to the user
//	case intercept.KindFailed:    // handle outcome.Err
//	}
//
// For more details see the README and individual sub-packages.
package toolgate
