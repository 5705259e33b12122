package analytics

import "time"

// timeNow is swappable in tests for deterministic velocity windows.
var timeNow = time.Now
