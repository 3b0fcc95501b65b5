package sink

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DateLayout is the layout of the date stamp embedded in file names.
const DateLayout = "2006-01-02"

// ErrFileClosed is returned by Write when no file is open, either after Close
// or after a failed Rotate.
var ErrFileClosed = errors.New("rotating file is closed")

// DateStamp returns the UTC date stamp for t.
func DateStamp(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// FileName builds <folder>/<prefix><YYYY-MM-DD>.<extension> for the UTC day
// of t. The folder segment is omitted when empty.
func FileName(folder, prefix, extension string, t time.Time) string {
	name := prefix + DateStamp(t) + "." + extension
	if folder == "" {
		return name
	}
	return filepath.Join(folder, name)
}

// RotatingFile appends lines to a date-stamped file. Rotate repoints it to the
// file for a new day; Write and Rotate are serialized by one mutex.
type RotatingFile struct {
	folder    string
	prefix    string
	extension string

	mu   sync.Mutex
	file *os.File
	path string
}

// OpenRotatingFile creates the folder if needed and opens today's file for t.
func OpenRotatingFile(folder, prefix, extension string, t time.Time) (*RotatingFile, error) {
	if folder != "" {
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return nil, &PersistError{Op: "mkdir", Path: folder, Err: err}
		}
	}
	f := &RotatingFile{folder: folder, prefix: prefix, extension: extension}
	if err := f.Rotate(t); err != nil {
		return nil, err
	}
	return f, nil
}

// Folder returns the directory files are created in.
func (f *RotatingFile) Folder() string { return f.folder }

// Prefix returns the file name prefix.
func (f *RotatingFile) Prefix() string { return f.prefix }

// Extension returns the file extension, without the dot.
func (f *RotatingFile) Extension() string { return f.extension }

// Path returns the path of the currently open file.
func (f *RotatingFile) Path() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.path
}

// Write appends data plus a newline to the current file.
func (f *RotatingFile) Write(data []byte) error {
	line := make([]byte, 0, len(data)+1)
	line = append(line, data...)
	line = append(line, '\n')

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return ErrFileClosed
	}
	_, err := f.file.Write(line)
	return err
}

// Rotate closes the current file and opens the one named for t.
func (f *RotatingFile) Rotate(t time.Time) error {
	path := FileName(f.folder, f.prefix, f.extension, t)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file != nil {
		_ = f.file.Close()
		f.file = nil
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return &PersistError{Op: "open", Path: path, Err: err}
	}
	f.file = file
	f.path = path
	return nil
}

func (f *RotatingFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}
