package domain

import "testing"

func TestCanonicalTypeNormalizesSuffixes(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{".PDF", "pdf"},
		{"jpeg", "jpg"},
		{".heic", "heif"},
		{".tif", "tiff"},
		{"md", "txt"},
		{"csv", "csv"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CanonicalType(tc.in); got != tc.want {
			t.Errorf("CanonicalType(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMIMEForType(t *testing.T) {
	if got, ok := MIMEForType("pdf"); !ok || got != "application/pdf" {
		t.Fatalf("MIMEForType(pdf) = %q, %v", got, ok)
	}
	if got, ok := MIMEForType("JPG"); !ok || got != "image/jpeg" {
		t.Fatalf("MIMEForType(JPG) = %q, %v", got, ok)
	}
	if got, ok := MIMEForType("unknown"); ok {
		t.Fatalf("MIMEForType(unknown) = %q, want miss", got)
	}
}

func TestSupportedSuffix(t *testing.T) {
	for _, suffix := range []string{".pdf", ".jpeg", ".md", ".tsv", ".docx"} {
		if !SupportedSuffix(suffix) {
			t.Errorf("SupportedSuffix(%q) = false", suffix)
		}
	}
	for _, suffix := range []string{".exe", ".zip", ""} {
		if SupportedSuffix(suffix) {
			t.Errorf("SupportedSuffix(%q) = true", suffix)
		}
	}
}

func TestSplitDelimiter(t *testing.T) {
	if d, ok := SplitDelimiter(".csv"); !ok || d != ',' {
		t.Fatalf("SplitDelimiter(.csv) = %q, %v", d, ok)
	}
	if d, ok := SplitDelimiter(".tsv"); !ok || d != '\t' {
		t.Fatalf("SplitDelimiter(.tsv) = %q, %v", d, ok)
	}
	if _, ok := SplitDelimiter(".txt"); ok {
		t.Fatalf("SplitDelimiter(.txt) should not split")
	}
}

func TestClampBatchSize(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, 1},
		{-3, 1},
		{1, 1},
		{25, 25},
		{50, 50},
		{500, 50},
	}
	for _, tc := range cases {
		if got := ClampBatchSize(tc.in); got != tc.want {
			t.Errorf("ClampBatchSize(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestIngestStatusTerminal(t *testing.T) {
	terminal := []IngestStatus{StatusComplete, StatusError, StatusCancelled}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []IngestStatus{StatusQueued, StatusProcessing} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestProgressGroupsNilSafe(t *testing.T) {
	var p *IngestProgress
	if got := p.Groups(); got != nil {
		t.Fatalf("nil progress should yield nil groups, got %v", got)
	}

	p = &IngestProgress{
		Complete: &ProgressGroup{Documents: []DocumentProgress{{DocumentID: "d1", Status: StatusComplete}}},
	}
	groups := p.Groups()
	if len(groups) != 4 {
		t.Fatalf("expected all four sub-groups, got %d", len(groups))
	}
	if groups[1] == nil || len(groups[1].Documents) != 1 {
		t.Fatalf("expected complete group in scan position 1: %+v", groups)
	}
}
