package testforms

import "time"

// Config holds configuration for the form test
type Config struct {
	BaseURL        string        // Base URL of the service
	NumSubmissions int           // Number of contact submissions to generate
	NumConversions int           // Number of conversion checks to run
	Workers        int           // Number of concurrent workers
	Timeout        time.Duration // HTTP request timeout
	OutputFile     string        // Output file for submissions
	LogFile        string        // Log file for test output
	Verbose        bool          // Enable verbose logging
}

// Submission represents a contact payload to be submitted
type Submission struct {
	SubmissionID string `json:"submission_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Message      string `json:"message"`

	// ExpectValid records whether the payload should pass validation.
	ExpectValid bool `json:"-"`
}

// ConversionCheck represents one /convert probe and its expectation
type ConversionCheck struct {
	Points      string  `json:"points"`
	ExpectOK    bool    `json:"-"`
	ExpectValue float64 `json:"-"`
}

// AckResponse represents the response from a contact submission
type AckResponse struct {
	Status    string `json:"status"`
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

// ConvertResponse represents the response from a conversion request
type ConvertResponse struct {
	Success bool    `json:"success"`
	Value   float64 `json:"value"`
	Message string  `json:"message"`
}

// StatusResponse represents one entry from the submissions endpoints
type StatusResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	ReceivedAt  string `json:"received_at"`
	DeliveredAt string `json:"delivered_at"`
}

// Stats holds test statistics
type Stats struct {
	SubmissionsGenerated int
	SubmissionsSubmitted int
	SubmissionsAccepted  int
	SubmissionsRejected  int
	SubmissionsDuplicate int
	SubmissionsFailed    int
	SubmissionsDelivered int
	ConversionsChecked   int
	ConversionMismatches int
	StartTime            time.Time
	EndTime              time.Time
	Duration             time.Duration
}
