// Package yaml reads tweetexport settings from a YAML (or JSON) file.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/tweetexport"
	"gopkg.in/yaml.v3"
)

// LoadSettings reads the settings file at path. Options missing from the
// file keep their defaults; a missing file yields DefaultSettings. An empty
// path also yields the defaults.
func LoadSettings(path string) (*tweetexport.Settings, error) {
	if path == "" {
		return tweetexport.DefaultSettings(), nil
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return tweetexport.DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open settings %s: %w", path, err)
	}
	defer f.Close()

	s, err := ParseSettings(f)
	if err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// ParseSettings decodes settings from r over DefaultSettings and validates
// the result. Unknown keys are rejected.
func ParseSettings(r io.Reader) (*tweetexport.Settings, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	s := tweetexport.DefaultSettings()
	if len(bytes.TrimSpace(b)) == 0 {
		return s, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		return nil, tweetexport.Errorf(tweetexport.EINVALID, "failed to decode settings: %v", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
