package journal

import (
	"context"
	"time"

	"codeberg.org/mutker/qosprobe/internal/record"
)

// Journal mirrors metric records into a local database. It satisfies
// metriclog.Sink.
type Journal interface {
	Write(ctx context.Context, rec record.MetricRecord) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// Repository defines the interface for journal storage
type Repository interface {
	Record(entry *Entry) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// Entry is one stored record
type Entry struct {
	Timestamp time.Time
	Name      string
	Value     string
	Comment   string
}

func entryFrom(rec record.MetricRecord) *Entry {
	return &Entry{
		Timestamp: rec.Timestamp,
		Name:      rec.Name,
		Value:     rec.Value,
		Comment:   rec.Comment,
	}
}
