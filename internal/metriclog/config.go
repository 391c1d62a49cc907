package metriclog

import (
	"path/filepath"

	"codeberg.org/mutker/qosprobe/internal/errors"
)

const (
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644
	defaultBaseName = "metricas"
	fileExtension   = ".xml"
)

type Config struct {
	Dir          string
	BaseName     string
	EscapeMarkup bool
}

func DefaultConfig() Config {
	return Config{
		Dir:      ".",
		BaseName: defaultBaseName,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.BaseName == "" || c.BaseName != filepath.Base(c.BaseName) {
		return errFactory.WithData(ErrInvalidBaseName, c.BaseName)
	}
	return nil
}

// Path returns the record file location. The extension is fixed.
func (c Config) Path() string {
	return filepath.Join(c.Dir, c.BaseName+fileExtension)
}
