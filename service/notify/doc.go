// Package notify models the outbound notification boundary as an explicit
// optional capability with a no-op default, so callers never need exception
// style guards around a possibly absent collaborator.
package notify
