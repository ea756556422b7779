package transfer

import (
	"fmt"
	"os"
	"path/filepath"
)

// ReadFile decodes the document at path, choosing the format from its
// extension.
func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("transfer: open %s: %w", path, err)
	}
	defer f.Close()
	doc, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// WriteFile encodes doc to path, replacing any existing file. The document
// is written to a temporary file in the same directory first so a reader
// never sees a partial document.
func WriteFile(path string, doc Document, format Format) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".destrack-export-*")
	if err != nil {
		return fmt.Errorf("transfer: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if err := Encode(tmp, doc, format); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("transfer: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("transfer: write %s: %w", path, err)
	}
	return nil
}
