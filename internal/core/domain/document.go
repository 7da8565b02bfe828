package domain

// Document is a pending ingestion unit. FilePath may be a local filesystem
// path or a remote URL; classification decides which. Documents are never
// mutated after construction, derived records are created instead.
type Document struct {
	BucketID     int            `json:"bucket_id"`
	FileName     string         `json:"file_name,omitempty"`
	FilePath     string         `json:"file_path"`
	FileType     string         `json:"file_type,omitempty"`
	ProcessLevel string         `json:"process_level,omitempty"`
	SearchData   map[string]any `json:"search_data,omitempty"`
}

// RemoteDocument is the registration unit sent to the ingest endpoint. Its
// SourceURL must be fetchable by the backend at registration time.
type RemoteDocument struct {
	BucketID     int            `json:"bucket_id"`
	FileName     string         `json:"file_name,omitempty"`
	FileType     string         `json:"file_type,omitempty"`
	ProcessLevel string         `json:"process_level,omitempty"`
	SearchData   map[string]any `json:"search_data,omitempty"`
	SourceURL    string         `json:"source_url"`
}

// Remote derives the registration record for a document whose content is
// reachable at sourceURL, carrying the passthrough options along.
func (d Document) Remote(sourceURL string) RemoteDocument {
	return RemoteDocument{
		BucketID:     d.BucketID,
		FileName:     d.FileName,
		FileType:     d.FileType,
		ProcessLevel: d.ProcessLevel,
		SearchData:   d.SearchData,
		SourceURL:    sourceURL,
	}
}
