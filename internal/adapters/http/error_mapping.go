package httpadapter

import (
	"net/http"

	"github.com/avasiliev/docstream/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrJobNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrUploadFailed), domain.IsKind(err, domain.ErrIngestFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
