// Package policy classifies tools into approval tiers. The static table is
// compiled in; per-user preferences can only soften tools explicitly marked
// user-configurable, never tools that statically require approval. Unknown
// tool names and unreadable preferences resolve to the most restrictive
// tier, so the package fails safe by construction.
package policy
