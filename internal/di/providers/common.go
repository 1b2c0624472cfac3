package providers

import "time"

// shutdownTimeout bounds how long any single resource may take to shut
// down before the process gives up on it.
const shutdownTimeout = 30 * time.Second
