package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/scigolib/lzha"
)

func TestExpandPatterns(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got := ExpandPatterns([]string{filepath.Join(dir, "*.txt")})
	if len(got) != 2 {
		t.Fatalf("expanded %d files, want 2: %v", len(got), got)
	}

	// Literal paths that match nothing come through verbatim so the
	// archiver can warn about them.
	missing := filepath.Join(dir, "missing.bin")
	got = ExpandPatterns([]string{missing})
	if len(got) != 1 || got[0] != missing {
		t.Errorf("ExpandPatterns(missing) = %v", got)
	}
}

func TestPrintList(t *testing.T) {
	infos := []lzha.EntryInfo{
		{Filename: "one.txt", OriginalSize: 1000, CompressedSize: 400},
		{Filename: "two.txt", OriginalSize: 500, CompressedSize: 500},
	}

	var out strings.Builder
	PrintList(&out, infos)
	text := out.String()

	for _, want := range []string{"one.txt", "two.txt", "TOTAL", "1500", "900", "40.0%"} {
		if !strings.Contains(text, want) {
			t.Errorf("listing missing %q:\n%s", want, text)
		}
	}
}
