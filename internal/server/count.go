package server

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"word-counter/internal/service"
)

// Client facing messages.
const (
	msgFileEmpty        = "File is empty."
	msgPlainTextOnly    = "Only plain text files are allowed."
	msgFileNameRequired = "File name is required."
	msgInvalidFileName  = "Invalid file name."
	msgFileNotFound     = "File not found."
	msgFileTooLarge     = "File too large."
	msgInternal         = "Internal server error."
)

// countResp is the JSON answer of a count request when the client asks
// for application/json.
type countResp struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Words  int    `json:"words"`
	Tokens int    `json:"tokens"`
}

// handleCountWords handles POST /wordcounter/countwords. The multipart form
// field "file" is streamed through the counter; the stored result's locator
// is returned as the plain text body and in the Location header.
func (s *Server) handleCountWords(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rid := RequestIDFromContext(r.Context())

	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		s.metrics.RecordUpload(OutcomeInvalid, 0)
		http.Error(w, msgFileEmpty, http.StatusBadRequest)
		return
	}

	part, err := nextFilePart(mr)
	if err != nil {
		if isTooLarge(err) {
			s.rejectTooLarge(w, rid)
			return
		}
		s.metrics.RecordUpload(OutcomeInvalid, 0)
		http.Error(w, msgFileEmpty, http.StatusBadRequest)
		return
	}
	if part == nil {
		s.metrics.RecordUpload(OutcomeInvalid, 0)
		http.Error(w, msgFileEmpty, http.StatusBadRequest)
		return
	}
	defer func() { _ = part.Close() }()

	if err := ValidateUploadContentType(part.Header.Get("Content-Type")); err != nil {
		s.log.Debug("upload_rejected", map[string]interface{}{
			"rid":    rid,
			"reason": err.Error(),
		})
		s.metrics.RecordUpload(OutcomeInvalid, 0)
		http.Error(w, msgPlainTextOnly, http.StatusBadRequest)
		return
	}

	if service.BaseName(part.FileName()) == "" {
		s.metrics.RecordUpload(OutcomeInvalid, 0)
		http.Error(w, msgFileNameRequired, http.StatusBadRequest)
		return
	}

	res, err := s.svc.CountAndStore(r.Context(), part.FileName(), part)
	if err != nil {
		if isTooLarge(err) {
			s.rejectTooLarge(w, rid)
			return
		}
		switch service.Kind(err) {
		case service.ErrInvalidInput:
			s.metrics.RecordUpload(OutcomeInvalid, 0)
			http.Error(w, msgFileEmpty, http.StatusBadRequest)
		default:
			s.metrics.RecordUpload(OutcomeError, 0)
			s.log.Error("count_failed", map[string]interface{}{
				"rid":  rid,
				"file": part.FileName(),
			}, err)
			http.Error(w, msgInternal, http.StatusInternalServerError)
		}
		return
	}

	s.metrics.RecordUpload(OutcomeOK, res.Tokens)
	s.log.Info("count_stored", map[string]interface{}{
		"rid":    rid,
		"name":   res.Name,
		"words":  res.Words,
		"tokens": res.Tokens,
		"bytes":  res.Bytes,
		"ms":     time.Since(start).Milliseconds(),
	})

	w.Header().Set("Location", res.Locator)
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, countResp{
			Name:   res.Name,
			URL:    res.Locator,
			Words:  res.Words,
			Tokens: res.Tokens,
		})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, res.Locator)
}

// nextFilePart returns the first part named "file", or nil when the form
// has none.
func nextFilePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() == "file" {
			return part, nil
		}
		_ = part.Close()
	}
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

func (s *Server) rejectTooLarge(w http.ResponseWriter, rid string) {
	s.metrics.RecordUpload(OutcomeTooLarge, 0)
	s.log.Warn("upload_too_large", map[string]interface{}{
		"rid":   rid,
		"limit": s.maxUploadBytes,
	})
	http.Error(w, msgFileTooLarge, http.StatusRequestEntityTooLarge)
}
