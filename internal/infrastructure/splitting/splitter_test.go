package splitting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCSV(t *testing.T, dir, name string, rows int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("id,name,value\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "%d,row-%d,%d\n", i, i, i*10)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
}

func TestSplitLargeCSVIntoThreeFragments(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "table.csv", 2500)

	fragments, err := NewSplitter(path, ',').Split()
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(fragments) != 3 {
		t.Fatalf("expected 3 fragments for 2500 rows, got %d", len(fragments))
	}

	var dataRows []string
	for i, fragment := range fragments {
		want := fmt.Sprintf("table_%d.csv", i+1)
		if filepath.Base(fragment) != want {
			t.Fatalf("fragment %d named %s, want %s", i, filepath.Base(fragment), want)
		}
		lines := readLines(t, fragment)
		if lines[0] != "id,name,value" {
			t.Fatalf("fragment %s missing header: %q", fragment, lines[0])
		}
		dataRows = append(dataRows, lines[1:]...)
	}
	if len(dataRows) != 2500 {
		t.Fatalf("fragments hold %d data rows, want 2500", len(dataRows))
	}

	// Every first fragment gets ceil(2500/3) = 834 rows, the last the rest.
	first := readLines(t, fragments[0])
	if len(first)-1 != 834 {
		t.Fatalf("first fragment holds %d rows, want 834", len(first)-1)
	}

	original := readLines(t, path)
	for i, row := range dataRows {
		if row != original[i+1] {
			t.Fatalf("row %d diverges: %q vs %q", i, row, original[i+1])
		}
	}
}

func TestSplitSmallCSVReturnsOriginal(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "small.csv", 42)

	fragments, err := NewSplitter(path, ',').Split()
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(fragments) != 1 || fragments[0] != path {
		t.Fatalf("small file must pass through unchanged, got %v", fragments)
	}
}

func TestSplitHeaderOnlyCSVReturnsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(path, []byte("id,name,value\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	fragments, err := NewSplitter(path, ',').Split()
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(fragments) != 1 || fragments[0] != path {
		t.Fatalf("header-only file must pass through, got %v", fragments)
	}
}

func TestSplitTSVUsesTabDelimiter(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	b.WriteString("id\tname\n")
	for i := 0; i < 1500; i++ {
		fmt.Fprintf(&b, "%d\trow-%d\n", i, i)
	}
	path := filepath.Join(dir, "table.tsv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write tsv: %v", err)
	}

	fragments, err := NewSplitter(path, '\t').Split()
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(fragments) != 2 {
		t.Fatalf("expected 2 fragments for 1500 rows, got %d", len(fragments))
	}
	lines := readLines(t, fragments[0])
	if lines[0] != "id\tname" {
		t.Fatalf("fragment header lost tab delimiter: %q", lines[0])
	}
}

func TestExpandPassesThroughSupportedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(path, []byte("pdf"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	files, err := NewService().Expand(path)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(files) != 1 || files[0] != path {
		t.Fatalf("expected passthrough, got %v", files)
	}
}

func TestExpandSkipsUnsupportedAndMissingFiles(t *testing.T) {
	dir := t.TempDir()
	binPath := filepath.Join(dir, "tool.exe")
	if err := os.WriteFile(binPath, []byte("bin"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if files, err := NewService().Expand(binPath); err != nil || files != nil {
		t.Fatalf("unsupported suffix must yield nothing, got %v, %v", files, err)
	}
	if files, err := NewService().Expand(filepath.Join(dir, "missing.pdf")); err != nil || files != nil {
		t.Fatalf("missing file must yield nothing, got %v, %v", files, err)
	}
	if files, err := NewService().Expand(dir); err != nil || files != nil {
		t.Fatalf("directory must yield nothing, got %v, %v", files, err)
	}
}

func TestExpandSplitsLargeCSV(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "big.csv", 2100)

	files, err := NewService().Expand(path)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 fragments for 2100 rows, got %d", len(files))
	}
}
