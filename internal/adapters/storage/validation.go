package storage

import (
	"fmt"
	"strings"
)

// ContentTypeParquet is the media type used for archive objects.
const ContentTypeParquet = "application/vnd.apache.parquet"

// AllowedContentTypes defines the MIME types the engine uploads.
var AllowedContentTypes = map[string]bool{
	ContentTypeParquet:         true,
	"application/json":         true,
	"application/octet-stream": true,
}

// ValidateContentType checks if the content type is allowed.
func ValidateContentType(contentType string) error {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = strings.TrimSpace(ct[:idx])
	}
	if !AllowedContentTypes[ct] {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	return nil
}

// ValidateFileKey rejects empty keys and path traversal.
func ValidateFileKey(fileKey string) error {
	if strings.TrimSpace(fileKey) == "" {
		return fmt.Errorf("file key is required")
	}
	if strings.HasPrefix(fileKey, "/") {
		return fmt.Errorf("file key %q must be relative", fileKey)
	}
	for _, part := range strings.Split(fileKey, "/") {
		if part == ".." {
			return fmt.Errorf("file key %q contains path traversal", fileKey)
		}
	}
	return nil
}
