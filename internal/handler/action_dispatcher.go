package handler

import (
	"mime"
	"net/http"

	"pdf-to-qr-products/internal/domain"
	apperrors "pdf-to-qr-products/pkg/errors"
)

// multipartMemory is the part of a multipart form kept in memory; the rest
// spills to temporary files.
const multipartMemory = 8 << 20

// ActionDispatcher routes form posts to the handler registered for their
// "action" field.
type ActionDispatcher struct {
	actions     map[string]domain.ActionHandler
	maxBodySize int64
	logger      domain.Logger
}

// NewActionDispatcher creates a dispatcher that caps request bodies at maxBodySize bytes.
func NewActionDispatcher(maxBodySize int64, logger domain.Logger) *ActionDispatcher {
	return &ActionDispatcher{
		actions:     make(map[string]domain.ActionHandler),
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// Register binds an action name to its handler. A later registration for the
// same name replaces the earlier one.
func (d *ActionDispatcher) Register(action string, h domain.ActionHandler) {
	d.actions[action] = h
}

func (d *ActionDispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if d.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, d.maxBodySize)
	}

	if err := parseForm(r); err != nil {
		d.logger.Warn("Failed to parse action form", "error", err)
		writeFailure(w, apperrors.NewValidationError("Invalid request."))
		return
	}

	action := r.FormValue("action")
	h, ok := d.actions[action]
	if !ok {
		d.logger.Warn("Unknown action requested", "action", action)
		writeFailure(w, domain.ErrUnknownAction)
		return
	}

	h.ServeAction(w, r)
}

func parseForm(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return r.ParseMultipartForm(multipartMemory)
	}
	return r.ParseForm()
}
