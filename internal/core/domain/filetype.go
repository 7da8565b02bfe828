package domain

import (
	"path/filepath"
	"strings"
)

// documentTypeToMIME lists every declared type the backend accepts. Loaded
// once at process start and never mutated.
var documentTypeToMIME = map[string]string{
	"bmp":  "image/bmp",
	"gif":  "image/gif",
	"heif": "image/heif",
	"hwp":  "application/x-hwp",
	"ico":  "image/vnd.microsoft.icon",
	"svg":  "image/svg",
	"tiff": "image/tiff",
	"webp": "image/webp",
	"txt":  "text/plain",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"pdf":  "application/pdf",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"csv":  "text/csv",
	"tsv":  "text/tab-separated-values",
	"json": "application/json",
}

// suffixAliases maps file suffixes onto the canonical declared type they are
// ingested as.
var suffixAliases = map[string]string{
	".jpeg": "jpg",
	".heic": "heif",
	".tif":  "tiff",
	".md":   "txt",
}

// MIMEForType returns the canonical MIME mapping for a declared type.
func MIMEForType(fileType string) (string, bool) {
	mime, ok := documentTypeToMIME[strings.ToLower(fileType)]
	return mime, ok
}

// CanonicalType derives the declared type from a file suffix (with or without
// the leading dot), applying the alias table.
func CanonicalType(suffix string) string {
	s := strings.TrimPrefix(strings.ToLower(suffix), ".")
	if alias, ok := suffixAliases["."+s]; ok {
		return alias
	}
	return s
}

// AliasForSuffix reports the canonical declared type for an aliased suffix.
func AliasForSuffix(suffix string) (string, bool) {
	alias, ok := suffixAliases[strings.ToLower(suffix)]
	return alias, ok
}

// SupportedSuffix reports whether files with the given suffix can be ingested.
func SupportedSuffix(suffix string) bool {
	s := strings.ToLower(suffix)
	if _, ok := suffixAliases[s]; ok {
		return true
	}
	_, ok := documentTypeToMIME[strings.TrimPrefix(s, ".")]
	return ok
}

// SupportedFile is a convenience wrapper over SupportedSuffix for full paths.
func SupportedFile(path string) bool {
	return SupportedSuffix(filepath.Ext(path))
}

// SplitDelimiter returns the field delimiter for suffixes whose files are
// split before upload.
func SplitDelimiter(suffix string) (rune, bool) {
	switch strings.ToLower(suffix) {
	case ".csv":
		return ',', true
	case ".tsv":
		return '\t', true
	default:
		return 0, false
	}
}
