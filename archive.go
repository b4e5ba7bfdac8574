// Package lzha archives files into a single container with per-entry
// CRC32 integrity, using one of two compression backends: an LZ77+Huffman
// pipeline (LZHA containers) or a range-coded LZMA pipeline (LZMA
// containers).
//
// The archiver operates on whole in-memory buffers per entry; containers
// are built in memory and written with a single write. Both container
// formats are private to this tool.
package lzha

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/scigolib/lzha/internal/checksum"
	"github.com/scigolib/lzha/internal/container"
	"github.com/scigolib/lzha/internal/utils"
)

// Error kinds surfaced by archive operations. Match with errors.Is.
var (
	ErrBadMagic             = container.ErrBadMagic
	ErrUnsupportedVersion   = container.ErrUnsupportedVersion
	ErrTruncatedArchive     = container.ErrTruncatedArchive
	ErrTruncatedPayload     = utils.ErrTruncatedPayload
	ErrInvalidBackReference = utils.ErrInvalidBackReference
	ErrCrcMismatch          = utils.ErrCrcMismatch
)

// Archiver creates, extracts, lists, and appends to archives using the
// codec it was constructed with. The codec also fixes the container
// format: LZHA for the LZ77+Huffman pipeline, LZMA for the range-coded
// backends.
type Archiver struct {
	codec Codec

	// Progress, when non-nil, receives user-facing progress lines
	// (per-file status and totals). The library default is silent.
	Progress io.Writer
}

// New creates an archiver for the given codec.
func New(codec Codec) *Archiver {
	return &Archiver{codec: codec}
}

// Codec returns the codec the archiver was constructed with.
func (a *Archiver) Codec() Codec { return a.codec }

func (a *Archiver) statusf(format string, args ...any) {
	if a.Progress != nil {
		fmt.Fprintf(a.Progress, format, args...)
	}
}

// EntryInfo is the per-entry metadata returned by List.
type EntryInfo struct {
	Filename       string
	OriginalSize   uint64
	CompressedSize uint64
	CRC32          uint32
}

// Ratio returns the compressed/original size in percent, or zero for an
// empty entry.
func (e EntryInfo) Ratio() float64 {
	if e.OriginalSize == 0 {
		return 0
	}
	return float64(e.CompressedSize) / float64(e.OriginalSize) * 100
}

// Create archives the given files. Unreadable inputs are skipped with a
// warning; duplicate basenames keep only the last occurrence. Nothing is
// written unless at least one entry was produced. Writing is not atomic.
func (a *Archiver) Create(archivePath string, files []string) error {
	entries, err := a.compressFiles(files, "Compressing")
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		a.statusf("No files to archive\n")
		return nil
	}

	if err := a.writeArchive(archivePath, entries); err != nil {
		return err
	}

	var totalOriginal, totalCompressed uint64
	for i := range entries {
		totalOriginal += entries[i].OriginalSize
		totalCompressed += entries[i].CompressedSize
	}
	a.statusf("\nArchive created: %s\n", archivePath)
	a.statusf("Total: %d -> %d bytes (%.1f%%)\n",
		totalOriginal, totalCompressed, ratio(totalCompressed, totalOriginal))
	return nil
}

// Extract decompresses every entry of the archive into outputDir,
// creating it if absent. An entry whose payload fails to decode or whose
// CRC32 or size disagrees with the header is skipped with a warning;
// the remaining entries still extract.
func (a *Archiver) Extract(archivePath, outputDir string) error {
	entries, err := a.readArchive(archivePath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return utils.WrapError("output directory creation failed", err)
	}

	a.statusf("Extracting %d files...\n", len(entries))
	for i := range entries {
		entry := &entries[i]
		a.statusf("Extracting %s... ", entry.Filename)

		data, err := a.codec.Decompress(entry.CompressedData)
		if err == nil && !checksum.Verify(data, entry.OriginalSize, entry.CRC32) {
			err = utils.WrapError(entry.Filename, ErrCrcMismatch)
		}
		if err != nil {
			a.statusf("FAILED (%v)\n", err)
			continue
		}

		// Names are stored as basenames; never let a crafted entry
		// escape the output directory.
		target := filepath.Join(outputDir, filepath.Base(entry.Filename))
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return utils.WrapError("file write failed", err)
		}
		a.statusf("OK\n")
	}
	a.statusf("Extraction complete\n")
	return nil
}

// List returns the metadata of every entry in the archive.
func (a *Archiver) List(archivePath string) ([]EntryInfo, error) {
	entries, err := a.readArchive(archivePath)
	if err != nil {
		return nil, err
	}

	infos := make([]EntryInfo, len(entries))
	for i := range entries {
		infos[i] = EntryInfo{
			Filename:       entries[i].Filename,
			OriginalSize:   entries[i].OriginalSize,
			CompressedSize: entries[i].CompressedSize,
			CRC32:          entries[i].CRC32,
		}
	}
	return infos, nil
}

// Add compresses the given files and appends them to an existing archive,
// replacing entries whose basename matches a new file (last write wins).
// The archive is rewritten in place; the rewrite is not atomic.
func (a *Archiver) Add(archivePath string, files []string) error {
	existing, err := a.readArchive(archivePath)
	if err != nil {
		return err
	}

	added, err := a.compressFiles(files, "Adding")
	if err != nil {
		return err
	}
	if len(added) == 0 {
		a.statusf("No files to add\n")
		return nil
	}

	replaced := make(map[string]bool, len(added))
	for i := range added {
		replaced[added[i].Filename] = true
	}
	merged := existing[:0:0]
	for i := range existing {
		if !replaced[existing[i].Filename] {
			merged = append(merged, existing[i])
		}
	}
	merged = append(merged, added...)

	if err := a.writeArchive(archivePath, merged); err != nil {
		return err
	}
	a.statusf("Archive updated: %s\n", archivePath)
	return nil
}

// compressFiles reads and compresses the inputs, preserving order.
// Missing or unreadable files are skipped with a warning. Entries are
// compressed concurrently (they are independent); reads, warnings, and
// progress output stay sequential. Duplicate basenames keep the last
// occurrence.
func (a *Archiver) compressFiles(files []string, verb string) ([]container.Entry, error) {
	type input struct {
		name string
		data []byte
	}
	var inputs []input
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			a.statusf("Warning: %s not found, skipping\n", path)
			continue
		}
		inputs = append(inputs, input{name: filepath.Base(path), data: data})
	}
	if len(inputs) == 0 {
		return nil, nil
	}

	entries := make([]container.Entry, len(inputs))
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range inputs {
		i := i
		g.Go(func() error {
			compressed, err := a.codec.Compress(inputs[i].data)
			if err != nil {
				return utils.WrapError(inputs[i].name, err)
			}
			entries[i] = container.Entry{
				Filename:       inputs[i].name,
				OriginalSize:   uint64(len(inputs[i].data)),
				CompressedSize: uint64(len(compressed)),
				CRC32:          checksum.CRC32(inputs[i].data),
				CompressedData: compressed,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Last write wins on duplicate basenames, mirroring Add.
	seen := make(map[string]int, len(entries))
	deduped := entries[:0:0]
	for i := range entries {
		if j, ok := seen[entries[i].Filename]; ok {
			deduped[j] = entries[i]
			continue
		}
		seen[entries[i].Filename] = len(deduped)
		deduped = append(deduped, entries[i])
	}

	for i := range deduped {
		a.statusf("%s %s... OK (%.1f%%)\n", verb, deduped[i].Filename,
			ratio(deduped[i].CompressedSize, deduped[i].OriginalSize))
	}
	return deduped, nil
}

func (a *Archiver) readArchive(archivePath string) ([]container.Entry, error) {
	data, err := os.ReadFile(archivePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, utils.WrapError("archive not found", err)
		}
		return nil, utils.WrapError("archive read failed", err)
	}
	return container.Read(a.codec.format(), data)
}

func (a *Archiver) writeArchive(archivePath string, entries []container.Entry) error {
	data := container.Write(a.codec.format(), entries)
	if err := os.WriteFile(archivePath, data, 0o644); err != nil {
		return utils.WrapError("archive write failed", err)
	}
	return nil
}

func ratio(compressed, original uint64) float64 {
	if original == 0 {
		return 0
	}
	return float64(compressed) / float64(original) * 100
}
