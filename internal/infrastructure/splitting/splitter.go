package splitting

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/avasiliev/docstream/internal/core/domain"
)

const (
	rowsPerSplitUnit  = 1000
	bytesPerSplitUnit = 1024 * 1024
)

// Splitter partitions one oversized delimited text file into fragments, each
// carrying the original header plus a contiguous slice of rows. Fragments
// land in a fresh scratch directory; cleanup is the caller's concern.
type Splitter struct {
	path      string
	delimiter rune
}

func NewSplitter(path string, delimiter rune) *Splitter {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Splitter{path: path, delimiter: delimiter}
}

// Split returns the fragment paths in order. When the computed split factor
// is 1, or the file holds no data rows, the original path is returned as the
// sole output.
func (s *Splitter) Split() ([]string, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", s.path, err)
	}

	rows, err := s.rowCount()
	if err != nil {
		return nil, err
	}

	splits := splitCount(rows, info.Size())
	if rows < 1 || splits < 2 {
		return []string{s.path}, nil
	}
	rowsPerFile := (rows + splits - 1) / splits

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = s.delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", s.path, err)
	}

	scratchDir, err := os.MkdirTemp("", "docstream-split-")
	if err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}

	base := filepath.Base(s.path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	var (
		fragments []string
		out       *os.File
		writer    *csv.Writer
		row       int
		number    = 1
	)
	closeFragment := func() error {
		if out == nil {
			return nil
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			out.Close()
			return fmt.Errorf("write fragment %s: %w", out.Name(), err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("close fragment: %w", err)
		}
		out = nil
		return nil
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = closeFragment()
			return nil, fmt.Errorf("read %s: %w", s.path, err)
		}

		if row%rowsPerFile == 0 {
			if err := closeFragment(); err != nil {
				return nil, err
			}
			path := filepath.Join(scratchDir, fmt.Sprintf("%s_%d%s", stem, number, ext))
			out, err = os.Create(path)
			if err != nil {
				return nil, fmt.Errorf("create fragment %s: %w", path, err)
			}
			writer = csv.NewWriter(out)
			writer.Comma = s.delimiter
			if err := writer.Write(header); err != nil {
				out.Close()
				return nil, fmt.Errorf("write header to %s: %w", path, err)
			}
			fragments = append(fragments, path)
			number++
		}

		if err := writer.Write(record); err != nil {
			_ = closeFragment()
			return nil, fmt.Errorf("write row to fragment: %w", err)
		}
		row++
	}
	if err := closeFragment(); err != nil {
		return nil, err
	}

	return fragments, nil
}

// rowCount counts data rows, assuming exactly one header line.
func (s *Splitter) rowCount() (int, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lines++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("count rows of %s: %w", s.path, err)
	}
	return lines - 1, nil
}

func splitCount(rows int, size int64) int {
	rowFactor := rows/rowsPerSplitUnit + 1
	sizeFactor := int(size/bytesPerSplitUnit) + 1
	if rowFactor > sizeFactor {
		return rowFactor
	}
	return sizeFactor
}

// Service implements the split-or-passthrough expansion applied to every
// local file before upload.
type Service struct{}

func NewService() Service {
	return Service{}
}

// Expand returns the files to upload in place of path: the split fragments
// for oversized csv/tsv files, the path itself for other supported types,
// nothing for unsupported or non-regular files.
func (Service) Expand(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, nil
	}

	suffix := filepath.Ext(path)
	if !domain.SupportedSuffix(suffix) {
		return nil, nil
	}
	if delimiter, ok := domain.SplitDelimiter(suffix); ok {
		return NewSplitter(path, delimiter).Split()
	}
	return []string{path}, nil
}
