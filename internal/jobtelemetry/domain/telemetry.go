package domain

import (
	"strconv"
	"time"
)

// JobTelemetry is one telemetry entry reported by an automation job.
// Optional text fields use "" for absent.
type JobTelemetry struct {
	ID int64
	// ProcessID is the owning process, or nil when the reported reference was empty or not numeric.
	ProcessID             *int64
	JobID                 string
	QueueID               string
	StepDescription       string
	HumanTime             *int
	UniqueReference       string
	UniqueReferenceType   string
	BusinessFunction      string
	Geography             string
	ExcludeFromTimeSaving bool
	AdditionalInfo        string
	EntryDate             time.Time
}

// ParseProcessRef normalizes a textual process reference to a process ID.
// Only the canonical decimal form resolves: padded, signed or zero-prefixed references return nil,
// as do empty, non-numeric and negative ones. Such records never resolve to a process.
func ParseProcessRef(ref string) *int64 {
	if ref == "" {
		return nil
	}
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || id < 0 || strconv.FormatInt(id, 10) != ref {
		return nil
	}
	return &id
}

// FormatProcessRef renders a process ID as its textual reference; "" for nil.
func FormatProcessRef(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}
