// Package export writes the final tables to the output directory.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cleared-dev/stmtmerge/internal/model"
	"github.com/cleared-dev/stmtmerge/internal/summary"
)

const stampFormat = "_2006-01-02"

// Options controls output naming.
type Options struct {
	Dir       string
	BaseName  string
	Timestamp bool      // append _YYYY-MM-DD to BaseName
	Now       time.Time // date used for the stamp; zero means time.Now()
}

// Files lists the paths written by Write.
type Files struct {
	CSV  string
	XLSX string
}

// OutputName returns the file base name, stamped with now when requested.
func OutputName(base string, timestamp bool, now time.Time) string {
	if !timestamp {
		return base
	}
	return base + now.Format(stampFormat)
}

// Write creates the output directory and writes rs as CSV and XLSX. sum may be
// nil, in which case the workbook only holds the movements sheet. Existing
// files are overwritten.
func Write(opts Options, rs *model.RecordSet, sum *summary.Summary) (Files, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("creating output dir: %w", err)
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	name := OutputName(opts.BaseName, opts.Timestamp, now)
	files := Files{
		CSV:  filepath.Join(opts.Dir, name+".csv"),
		XLSX: filepath.Join(opts.Dir, name+".xlsx"),
	}

	if err := writeFile(files.CSV, func(f *os.File) error { return WriteCSV(f, rs) }); err != nil {
		return Files{}, err
	}
	if err := writeFile(files.XLSX, func(f *os.File) error { return WriteWorkbook(f, rs, sum) }); err != nil {
		return Files{}, err
	}
	return files, nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", filepath.Base(path), err)
	}
	return nil
}
