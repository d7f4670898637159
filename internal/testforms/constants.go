package testforms

import "time"

// HTTP status code constants.
const (
	StatusOK            = 200
	StatusAccepted      = 202
	StatusUnprocessable = 422
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	DeliveryWaitTimeout  = 30 * time.Second
	DeliveryPollInterval = 500 * time.Millisecond
	PercentageMultiplier = 100
)
