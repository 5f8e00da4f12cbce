// Package probe drives a running ranking service with generated candidate
// lists and checks every response for ordering and completeness.
package probe

import "time"

// Config holds configuration for a probe run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Requests   int           // Number of ranking requests to send
	Candidates int           // Candidates per request
	Workers    int           // Concurrent request workers
	Timeout    time.Duration // HTTP request timeout
	Mode       string        // Ranking mode; empty uses the server default
	CBOR       bool          // Send and accept application/cbor
	Merge      bool          // Split each list into two result sets and use /rank/merge
	OutputFile string        // Optional JSON dump of the generated lists
	Verbose    bool
}

// Stats holds probe statistics.
type Stats struct {
	RequestsGenerated  int
	RequestsSent       int
	RequestsSuccessful int
	RequestsFailed     int
	ResponsesInvalid   int
	CandidatesRanked   int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
