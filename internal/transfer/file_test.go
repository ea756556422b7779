package transfer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteReadFile(t *testing.T) {
	t.Parallel()
	doc, _ := Export(sampleState(), "p1", exportTime)

	for _, name := range []string{"out.json", "out.toml", "out.yml"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), name)
			if err := WriteFile(path, doc, FormatFromPath(path)); err != nil {
				t.Fatalf("WriteFile(%q): %v", name, err)
			}
			got, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile(%q): %v", name, err)
			}
			if diff := cmp.Diff(doc, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}

			entries, err := os.ReadDir(filepath.Dir(path))
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 1 {
				t.Errorf("directory has %d entries, want only the document", len(entries))
			}
		})
	}
}

func TestReadFileInvalid(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(path); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("ReadFile(broken.json) error = %v, want ErrInvalidDocument", err)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile(missing) error = %v, want os.ErrNotExist", err)
	}
}
