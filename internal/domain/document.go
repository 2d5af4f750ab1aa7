package domain

import "time"

// Document is the raw markup returned by the fetcher.
type Document struct {
	URL         string
	Markup      string
	ContentType string
	FetchedAt   time.Time
}

// Extraction pairs a snapshot with where and when it was taken. Snapshots
// have no identity of their own; consumers that keep one around key it by
// these timestamps.
type Extraction struct {
	Snapshot    *Snapshot
	SourceURL   string
	FetchedAt   time.Time
	ExtractedAt time.Time
}

// NewExtraction stamps a snapshot taken from doc with the current time.
func NewExtraction(doc Document, snap *Snapshot) Extraction {
	return Extraction{
		Snapshot:    snap,
		SourceURL:   doc.URL,
		FetchedAt:   doc.FetchedAt,
		ExtractedAt: clock.Now(),
	}
}

// ID returns the snapshot fingerprint.
func (e Extraction) ID() string {
	if e.Snapshot == nil {
		return ""
	}
	return e.Snapshot.Fingerprint()
}
