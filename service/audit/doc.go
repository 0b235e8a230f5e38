// Package audit implements the append-only record of gate decisions and
// their outcomes. Entries are immutable once written, argument values are
// stored only as a one-way hash, and a write failure is never allowed to
// propagate into the flow being audited.
package audit
