package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"codeberg.org/mutker/qosprobe/internal/errors"
)

const (
	DefaultName = "qosprobe.pid"
	filePerm    = 0o600
)

// File guards a single running sampler through a pid file.
type File struct {
	path string
}

// New returns a pid file named name in dir. Empty arguments select
// os.TempDir() and DefaultName.
func New(dir, name string) *File {
	if dir == "" {
		dir = os.TempDir()
	}
	if name == "" {
		name = DefaultName
	}
	return &File{path: filepath.Join(dir, name)}
}

func (f *File) Path() string {
	return f.path
}

// Write records the current process ID. A file left by a process that is no
// longer running is replaced.
func (f *File) Write() error {
	errFactory := errors.New()

	if pid, err := f.read(); err == nil {
		if pid != os.Getpid() && running(pid) {
			return errFactory.WithData(errors.ErrAlreadyRunning, struct {
				Path string
				PID  int
			}{
				Path: f.path,
				PID:  pid,
			})
		}
	} else if !os.IsNotExist(err) && !errors.HasCode(err, errors.ErrInvalidArgument) {
		return err
	}

	if err := os.WriteFile(f.path, []byte(strconv.Itoa(os.Getpid())), filePerm); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Remove deletes the pid file if it belongs to this process.
func (f *File) Remove() error {
	pid, err := f.read()
	if os.IsNotExist(err) {
		return nil
	}
	if err == nil && pid != os.Getpid() {
		return nil
	}

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(errors.ErrInternal, err)
	}

	return nil
}

func (f *File) read() (int, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, err
		}
		return 0, errors.New().Wrap(errors.ErrInternal, err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, errors.New().WithData(errors.ErrInvalidArgument, string(data))
	}

	return pid, nil
}

func running(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
