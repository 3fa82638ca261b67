// Package fs delivers exports as JSON files in a directory.
package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fwojciec/tweetexport"
)

// Ensure Sink implements tweetexport.ExportSink at compile time.
var _ tweetexport.ExportSink = (*Sink)(nil)

// Sink writes each export's payload to dir/<filename>.
// Files are written to <filename>.tmp first and renamed into place, so a
// reader never observes a partially written export.
type Sink struct {
	dir string
}

// NewSink creates a Sink writing into dir. The directory is created on
// first delivery.
func NewSink(dir string) *Sink {
	return &Sink{dir: dir}
}

// Path returns the location an export with the given filename is written to.
func (s *Sink) Path(filename string) string {
	return filepath.Join(s.dir, filename)
}

// Deliver writes the export payload to disk.
func (s *Sink) Deliver(ctx context.Context, export *tweetexport.Export) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if export.Filename == "" || filepath.Base(export.Filename) != export.Filename {
		return tweetexport.Errorf(tweetexport.EEXPORT, "invalid export filename %q", export.Filename)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return tweetexport.Errorf(tweetexport.EEXPORT, "failed to create %s: %v", s.dir, err)
	}

	final := s.Path(export.Filename)
	temp := final + ".tmp"
	if err := os.WriteFile(temp, export.Payload, 0644); err != nil {
		return tweetexport.Errorf(tweetexport.EEXPORT, "failed to write %s: %v", temp, err)
	}
	if err := os.Rename(temp, final); err != nil {
		_ = os.Remove(temp)
		return tweetexport.Errorf(tweetexport.EEXPORT, "failed to move %s into place: %v", final, err)
	}
	return nil
}

// ReadExport reads an export file written by Sink.
func ReadExport(path string) (*tweetexport.Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, tweetexport.Errorf(tweetexport.ENOTFOUND, "export %s not found", path)
		}
		return nil, err
	}
	var env tweetexport.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, tweetexport.Errorf(tweetexport.EINVALID, "failed to decode %s: %v", path, err)
	}
	return &env, nil
}

// ListExports returns the export files in dir, oldest first by name.
func ListExports(dir string) ([]string, error) {
	return filepath.Glob(filepath.Join(dir, "tweets_export_*.json"))
}
