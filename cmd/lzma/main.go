// Command lzma archives files with range-coded LZMA compression.
//
// Usage:
//
//	lzma create -o <archive> [-l <level>] <file>...
//	lzma extract <archive> [-d <directory>]
//	lzma list <archive>
//	lzma add <archive> <file>...
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/scigolib/lzha"
	"github.com/scigolib/lzha/internal/cli"
)

const defaultLevel = 6

func usage() {
	fmt.Fprintln(os.Stderr, `Usage:
  lzma create -o <archive> [-l <level>] <file>...
  lzma extract <archive> [-d <directory>]
  lzma list <archive>
  lzma add <archive> <file>...`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "create":
		err = runCreate(os.Args[2:])
	case "extract":
		err = runExtract(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "add":
		err = runAdd(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newArchiver(level int) *lzha.Archiver {
	a := lzha.New(lzha.NewXZCodec(level))
	a.Progress = os.Stdout
	return a
}

func runCreate(args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	output := fs.String("o", "", "archive path (required)")
	fs.StringVar(output, "output", "", "archive path (required)")
	level := fs.Int("l", defaultLevel, "compression level (0-9)")
	fs.IntVar(level, "level", defaultLevel, "compression level (0-9)")
	_ = fs.Parse(args)

	if *output == "" {
		return fmt.Errorf("create: -o <archive> is required")
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("create: no input files given")
	}

	files := cli.ExpandPatterns(fs.Args())
	return newArchiver(*level).Create(*output, files)
}

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	dir := fs.String("d", ".", "output directory")
	fs.StringVar(dir, "directory", ".", "output directory")
	_ = fs.Parse(args)

	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("extract: archive expected")
	}
	// Flags may follow the archive argument.
	archive := rest[0]
	_ = fs.Parse(rest[1:])
	if fs.NArg() != 0 {
		return fmt.Errorf("extract: exactly one archive expected")
	}
	return newArchiver(defaultLevel).Extract(archive, *dir)
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("list: exactly one archive expected")
	}
	infos, err := newArchiver(defaultLevel).List(fs.Arg(0))
	if err != nil {
		return err
	}
	cli.PrintList(os.Stdout, infos)
	return nil
}

func runAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("add: archive and at least one file expected")
	}
	files := cli.ExpandPatterns(fs.Args()[1:])
	return newArchiver(defaultLevel).Add(fs.Arg(0), files)
}
