package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/stmtmerge/internal/model"
)

// Parser converts one source file into a RecordSet.
type Parser interface {
	Parse(r io.Reader) (*model.RecordSet, error)
}

// FileInfo describes a source file in the input directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// sourceExt is the extension recognized as a statement export.
const sourceExt = ".csv"

// Scan returns the statement files in dir, in directory enumeration order.
// Subdirectories are not searched.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), sourceExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// ParseFile opens and parses a single source.
func ParseFile(p Parser, file FileInfo) (*model.RecordSet, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", file.Name, err)
	}
	defer f.Close()

	rs, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file.Name, err)
	}
	return rs, nil
}

// Merge concatenates record sets in order. Columns are unioned by name in
// first-seen order; cells a source does not have are left empty.
func Merge(sets ...*model.RecordSet) *model.RecordSet {
	var columns []string
	seen := make(map[string]bool)
	for _, rs := range sets {
		for _, c := range rs.Columns() {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
	}

	merged := model.NewRecordSet(columns...)
	for _, rs := range sets {
		pos := make([]int, len(columns))
		for i, c := range columns {
			pos[i] = rs.Index(c)
		}
		for _, rec := range rs.Records() {
			out := make(model.Record, len(columns))
			for i, p := range pos {
				if p >= 0 {
					out[i] = rec[p]
				}
			}
			// Width always matches the merged columns.
			_ = merged.Append(out)
		}
	}
	return merged
}

// Load parses every file with p and merges the results in file order.
func Load(p Parser, files []FileInfo) (*model.RecordSet, error) {
	sets := make([]*model.RecordSet, 0, len(files))
	for _, file := range files {
		rs, err := ParseFile(p, file)
		if err != nil {
			return nil, err
		}
		sets = append(sets, rs)
	}
	return Merge(sets...), nil
}
