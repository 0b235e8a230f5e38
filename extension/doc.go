// Package extension provides the live tool registry consumed by the
// interceptor, together with a registry of tool argument types.
package extension
