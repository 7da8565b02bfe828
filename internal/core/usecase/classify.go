package usecase

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/avasiliev/docstream/internal/core/domain"
)

// PartitionDocuments separates pending documents into records that are
// already remote and local files that still need an upload. It is a total,
// order-preserving partition: every input document lands in exactly one of
// the two groups or the whole call fails with a validation error.
func PartitionDocuments(documents []domain.Document) ([]domain.RemoteDocument, []domain.Document, error) {
	if len(documents) == 0 {
		return nil, nil, domain.WrapError(domain.ErrInvalidInput, "classify documents", errors.New("no documents provided for ingestion"))
	}

	remote := make([]domain.RemoteDocument, 0, len(documents))
	local := make([]domain.Document, 0, len(documents))

	for _, doc := range documents {
		if doc.FilePath == "" {
			return nil, nil, domain.WrapError(domain.ErrInvalidInput, "classify documents", errors.New("document is missing a file path"))
		}

		switch {
		case isRemoteURL(doc.FilePath):
			remote = append(remote, doc.Remote(doc.FilePath))
		case isLocalPath(doc.FilePath):
			local = append(local, doc)
		default:
			return nil, nil, domain.WrapError(domain.ErrInvalidInput, "classify documents", fmt.Errorf("invalid file path: %s", doc.FilePath))
		}
	}

	return remote, local, nil
}

func isRemoteURL(path string) bool {
	parsed, err := url.Parse(path)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}

func isLocalPath(path string) bool {
	_, err := os.Stat(expandUser(path))
	return err == nil
}

// expandUser resolves a leading "~" against the current user's home
// directory, mirroring shell tilde expansion for user-supplied paths.
func expandUser(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}
