package hunt

import "time"

// timeNow is swappable in tests for deterministic timestamps.
var timeNow = time.Now
