// Package upload implements the presign-then-PUT transfer of a local file to
// the document-search backend's upload target.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avasiliev/docstream/internal/core/domain"
)

type Client struct {
	httpClient *http.Client
}

func New() *Client {
	return NewWithHTTPClient(&http.Client{Timeout: 120 * time.Second})
}

func NewWithHTTPClient(httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient}
}

// Upload requests a presigned target for filePath, transfers the file bytes
// and returns the upload URL stripped of its query parameters. The stripped
// URL is what gets registered, so short-lived signing material never reaches
// the registration endpoint.
func (c *Client) Upload(ctx context.Context, endpoint, filePath string) (string, error) {
	fileName := filepath.Base(filePath)
	declaredType := domain.CanonicalType(filepath.Ext(fileName))

	target, err := c.presignedTarget(ctx, endpoint, fileName, declaredType)
	if err != nil {
		return "", err
	}

	method := strings.ToUpper(strings.TrimSpace(target.Method))
	if method == "" {
		method = http.MethodPut
	}
	if method != http.MethodPut {
		return "", domain.WrapError(domain.ErrUploadFailed, "upload file",
			fmt.Errorf("unsupported HTTP method: %s", method))
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("read file %s: %w", filePath, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.URL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	for key, value := range target.headers() {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" {
		if mime, ok := domain.MIMEForType(declaredType); ok {
			req.Header.Set("Content-Type", mime)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", domain.WrapError(domain.ErrUploadFailed, "upload file",
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	return stripQueryParams(target.URL)
}

type presignedTarget struct {
	URL    string         `json:"URL"`
	Method string         `json:"Method"`
	Header map[string]any `json:"Header"`
}

// headers normalizes each presign header value to a single string; list
// values contribute their first element.
func (t *presignedTarget) headers() map[string]string {
	out := make(map[string]string, len(t.Header))
	for key, value := range t.Header {
		switch v := value.(type) {
		case string:
			out[key] = v
		case []any:
			if len(v) > 0 {
				out[key] = fmt.Sprint(v[0])
			}
		default:
			out[key] = fmt.Sprint(v)
		}
	}
	return out
}

func (c *Client) presignedTarget(ctx context.Context, endpoint, fileName, declaredType string) (*presignedTarget, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse upload endpoint: %w", err)
	}
	query := u.Query()
	query.Set("name", fileName)
	query.Set("type", declaredType)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create presign request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("presign request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, domain.WrapError(domain.ErrUploadFailed, "presign upload",
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var target presignedTarget
	if err := json.NewDecoder(resp.Body).Decode(&target); err != nil {
		return nil, fmt.Errorf("decode presign response: %w", err)
	}
	if target.URL == "" {
		return nil, domain.WrapError(domain.ErrUploadFailed, "presign upload",
			fmt.Errorf("presign response is missing the upload URL"))
	}
	return &target, nil
}

func stripQueryParams(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse upload url: %w", err)
	}
	clean := url.URL{
		Scheme: parsed.Scheme,
		Host:   parsed.Host,
		Path:   parsed.Path,
	}
	return clean.String(), nil
}
