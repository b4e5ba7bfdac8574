// Package cli holds the bits the two archiver commands share: glob
// expansion of file arguments and the list-output table.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/scigolib/lzha"
)

// ExpandPatterns glob-expands each argument (doublestar patterns like
// **/*.txt are supported). Arguments that match nothing are kept verbatim
// so the archiver can report them as missing.
func ExpandPatterns(patterns []string) []string {
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil || len(matches) == 0 {
			files = append(files, pattern)
			continue
		}
		files = append(files, matches...)
	}
	return files
}

// PrintList renders the archive listing with per-entry sizes, ratios,
// and a totals row.
func PrintList(w io.Writer, infos []lzha.EntryInfo) {
	fmt.Fprintf(w, "%-40s %12s %12s %8s\n", "Filename", "Original", "Compressed", "Ratio")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	var totalOriginal, totalCompressed uint64
	for _, e := range infos {
		fmt.Fprintf(w, "%-40s %12d %12d %7.1f%%\n",
			e.Filename, e.OriginalSize, e.CompressedSize, e.Ratio())
		totalOriginal += e.OriginalSize
		totalCompressed += e.CompressedSize
	}

	fmt.Fprintln(w, strings.Repeat("-", 80))
	totalRatio := 0.0
	if totalOriginal > 0 {
		totalRatio = float64(totalCompressed) / float64(totalOriginal) * 100
	}
	fmt.Fprintf(w, "%-40s %12d %12d %7.1f%%\n", "TOTAL", totalOriginal, totalCompressed, totalRatio)
}
