package server

import (
	"mime"
	"net/http"
	"strconv"
	"strings"

	"word-counter/internal/service"
)

// handleGetCountResult serves a stored result as a plain text attachment.
// GET and POST are both accepted.
func (s *Server) handleGetCountResult(w http.ResponseWriter, r *http.Request) {
	rid := RequestIDFromContext(r.Context())
	name := r.PathValue("fileName")

	if strings.TrimSpace(name) == "" {
		s.metrics.RecordResult(OutcomeInvalid)
		http.Error(w, msgFileNameRequired, http.StatusBadRequest)
		return
	}

	content, err := s.svc.Fetch(r.Context(), name)
	if err != nil {
		switch service.Kind(err) {
		case service.ErrInvalidInput:
			s.metrics.RecordResult(OutcomeInvalid)
			http.Error(w, msgInvalidFileName, http.StatusBadRequest)
		case service.ErrNotFound:
			s.metrics.RecordResult(OutcomeNotFound)
			http.Error(w, msgFileNotFound, http.StatusNotFound)
		default:
			s.metrics.RecordResult(OutcomeError)
			s.log.Error("fetch_failed", map[string]interface{}{
				"rid":  rid,
				"name": name,
			}, err)
			http.Error(w, msgInternal, http.StatusInternalServerError)
		}
		return
	}

	s.metrics.RecordResult(OutcomeOK)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if disposition == "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", disposition)
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(content)
	}
}
