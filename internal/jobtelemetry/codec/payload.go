// Package codec defines the JSON shape of a job telemetry record shared by the REST API and Kafka ingestion.
package codec

import (
	"errors"
	"time"

	"techtrends/backend/internal/jobtelemetry/domain"
)

// ErrMissingEntryDate is returned by ToDomain when entryDate is absent.
var ErrMissingEntryDate = errors.New("entryDate is required")

// Payload is the wire representation of a job telemetry record.
// ProccesID keeps the historical spelling used by existing job runners; ProcessID is accepted as an alias.
// The reference is stored as a process ID, not as text: a value that is not a canonical
// non-negative integer is stored as NULL and reads back as an absent proccesId.
type Payload struct {
	ID                    int64      `json:"id"`
	ProccesID             string     `json:"proccesId,omitempty"`
	ProcessID             string     `json:"processId,omitempty"`
	JobID                 string     `json:"jobId,omitempty"`
	QueueID               string     `json:"queueId,omitempty"`
	StepDescription       string     `json:"stepDescription,omitempty"`
	HumanTime             *int       `json:"humanTime,omitempty"`
	UniqueReference       string     `json:"uniqueReference,omitempty"`
	UniqueReferenceType   string     `json:"uniqueReferenceType,omitempty"`
	BusinessFunction      string     `json:"businessFunction,omitempty"`
	Geography             string     `json:"geography,omitempty"`
	ExcludeFromTimeSaving bool       `json:"excludeFromTimeSaving"`
	AdditionalInfo        string     `json:"additionalInfo,omitempty"`
	EntryDate             *time.Time `json:"entryDate,omitempty"`
}

// FromDomain renders t in its wire form.
func FromDomain(t *domain.JobTelemetry) Payload {
	ref := domain.FormatProcessRef(t.ProcessID)
	entry := t.EntryDate.UTC()
	return Payload{
		ID:                    t.ID,
		ProccesID:             ref,
		ProcessID:             ref,
		JobID:                 t.JobID,
		QueueID:               t.QueueID,
		StepDescription:       t.StepDescription,
		HumanTime:             t.HumanTime,
		UniqueReference:       t.UniqueReference,
		UniqueReferenceType:   t.UniqueReferenceType,
		BusinessFunction:      t.BusinessFunction,
		Geography:             t.Geography,
		ExcludeFromTimeSaving: t.ExcludeFromTimeSaving,
		AdditionalInfo:        t.AdditionalInfo,
		EntryDate:             &entry,
	}
}

// ToDomain validates p and normalizes its process reference.
// A negative humanTime is rejected; an unresolvable process reference is kept as nil, not an error.
func (p Payload) ToDomain() (*domain.JobTelemetry, error) {
	if p.EntryDate == nil || p.EntryDate.IsZero() {
		return nil, ErrMissingEntryDate
	}
	if p.HumanTime != nil && *p.HumanTime < 0 {
		return nil, errors.New("humanTime must not be negative")
	}
	ref := p.ProccesID
	if ref == "" {
		ref = p.ProcessID
	}
	return &domain.JobTelemetry{
		ID:                    p.ID,
		ProcessID:             domain.ParseProcessRef(ref),
		JobID:                 p.JobID,
		QueueID:               p.QueueID,
		StepDescription:       p.StepDescription,
		HumanTime:             p.HumanTime,
		UniqueReference:       p.UniqueReference,
		UniqueReferenceType:   p.UniqueReferenceType,
		BusinessFunction:      p.BusinessFunction,
		Geography:             p.Geography,
		ExcludeFromTimeSaving: p.ExcludeFromTimeSaving,
		AdditionalInfo:        p.AdditionalInfo,
		EntryDate:             p.EntryDate.UTC(),
	}, nil
}
