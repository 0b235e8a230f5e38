// Package clock is the single time source for action TTL checks and record
// stamps, so tests can pin expiry math to a fixed instant.
package clock

import "time"

// NowFunc supplies the current time; swap it in tests for determinism.
var NowFunc = time.Now

// Now reports the current time via NowFunc.
func Now() time.Time { return NowFunc() }
