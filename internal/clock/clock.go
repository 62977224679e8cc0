// Package clock provides the time source used when a change event carries
// no usable timestamp of its own. Tests override NowFunc for determinism.
package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }
