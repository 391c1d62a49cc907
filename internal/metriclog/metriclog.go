// Package metriclog appends metric records to a persistent, append-only
// file and mirrors them to optional sinks.
package metriclog

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"codeberg.org/mutker/qosprobe/internal/errors"
	"codeberg.org/mutker/qosprobe/internal/logger"
	"codeberg.org/mutker/qosprobe/internal/record"
)

// Sink receives every record after it has been appended to the file.
type Sink interface {
	Write(ctx context.Context, rec record.MetricRecord) error
	Close() error
}

// Log is the append-only record file. The file is opened per append and
// created when missing; nothing is ever rewritten.
type Log struct {
	cfg    Config
	path   string
	logger logger.Logger
	sinks  []Sink
	mu     sync.Mutex
}

func New(cfg Config, log logger.Logger, sinks ...Sink) (*Log, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path()), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  cfg.Dir,
			Error: err.Error(),
		})
	}

	log.Debug().
		Str("path", cfg.Path()).
		Bool("escape_markup", cfg.EscapeMarkup).
		Int("sinks", len(sinks)).
		Msg("Metric log initialized")

	return &Log{
		cfg:    cfg,
		path:   cfg.Path(),
		logger: log,
		sinks:  sinks,
	}, nil
}

// Path returns the record file location.
func (l *Log) Path() string {
	return l.path
}

// Append records one metric. Failures are logged, never returned.
func (l *Log) Append(ctx context.Context, name, value, comment string) {
	rec := record.New(name, value, comment)

	if err := l.Write(rec); err != nil {
		var appErr errors.Error
		if errors.As(err, &appErr) {
			l.logger.ErrorWithContext(appErr, "metriclog", "append").
				Str("metric", name).
				Msg("Failed to append metric record")
		}
	}

	for _, s := range l.sinks {
		if err := s.Write(ctx, rec); err != nil {
			l.logger.Warn().
				Err(err).
				Str("error_code", string(ErrSinkWrite)).
				Str("metric", name).
				Msg("Failed to mirror metric record")
		}
	}
}

// Write appends rec as one line and reports persistence failures.
func (l *Log) Write(rec record.MetricRecord) error {
	line := record.Format(rec)
	if l.cfg.EscapeMarkup {
		line = record.FormatEscaped(rec)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, defaultFilePerm)
	if err != nil {
		return errors.New().WithData(ErrStorageWrite, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "open_file",
			Path:  l.path,
			Error: err.Error(),
		})
	}

	_, werr := f.WriteString(line + "\n")
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		return errors.New().WithData(ErrStorageWrite, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "write_record",
			Path:  l.path,
			Error: werr.Error(),
		})
	}

	return nil
}

// Close closes every sink and returns the first error.
func (l *Log) Close() error {
	var err error
	for _, s := range l.sinks {
		if e := s.Close(); e != nil && err == nil {
			err = errors.New().Wrap(ErrStorageClose, e)
		}
	}
	return err
}
