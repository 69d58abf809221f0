package simulate

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	JobPollInterval = 50 * time.Millisecond
	JobPollTimeout  = 30 * time.Second
	initialRating   = 1500.0
	eloScale        = 400.0
	reportInterval  = time.Second
)
