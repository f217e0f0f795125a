// validation.go - Upload and request validation helpers
package server

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

var (
	errMissingContentType = errors.New("missing content type")
	errNotPlainText       = errors.New("not a plain text file")
)

// ValidateUploadContentType accepts text/plain, with or without
// parameters such as charset.
func ValidateUploadContentType(contentType string) error {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return errMissingContentType
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf("%w: %v", errNotPlainText, err)
	}
	if mediaType != "text/plain" {
		return fmt.Errorf("%w: %s", errNotPlainText, mediaType)
	}
	return nil
}

// wantsJSON reports whether the client prefers a JSON answer.
func wantsJSON(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mediaType == "application/json" {
			return true
		}
	}
	return false
}
