/*
Package hexfile writes lane files in the plain hex format read by $readmemh.
*/
package hexfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
)

// Extension is appended to every lane file name.
const Extension = ".hex"

// Sink receives lane files.
type Sink interface {
	// Prepare makes the output location empty and ready for lane files.
	Prepare() error
	// WriteLane writes one lane file.
	WriteLane(name string, entries []string) error
	// FilePath is where the named lane file is written.
	FilePath(name string) string
}

// Dir is a Sink writing lane files into a single directory.
type Dir struct {
	Path string
}

// New creates a Dir sink rooted at path.
func New(path string) *Dir {
	return &Dir{Path: path}
}

// Prepare removes the directory with everything in it and recreates it, so lane files
// from a previous run with more lanes do not survive.
func (d *Dir) Prepare() error {
	if err := os.RemoveAll(d.Path); err != nil {
		return fmt.Errorf("unable to clear %s: %w", d.Path, err)
	}
	if err := os.MkdirAll(d.Path, 0755); err != nil {
		return fmt.Errorf("unable to create %s: %w", d.Path, err)
	}
	log.Debugf("Prepared %s", d.Path)
	return nil
}

// FilePath is the location of the named lane file.
func (d *Dir) FilePath(name string) string {
	return filepath.Join(d.Path, name+Extension)
}

// WriteLane writes each entry on its own newline terminated line.
func (d *Dir) WriteLane(name string, entries []string) (err error) {
	path := d.FilePath(name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create lane file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			err = multierror.Append(err, fmt.Errorf("unable to close %s: %w", path, closeErr)).ErrorOrNil()
		}
	}()

	w := bufio.NewWriter(f)
	for _, entry := range entries {
		if _, err := w.WriteString(entry + "\n"); err != nil {
			return fmt.Errorf("unable to write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("unable to write %s: %w", path, err)
	}

	log.Debugf("Wrote %d entries to %s", len(entries), path)
	return nil
}
