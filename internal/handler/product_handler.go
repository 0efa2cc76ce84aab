package handler

import (
	"encoding/json"
	"net/http"

	"pdf-to-qr-products/internal/domain"
)

// ProductHandler serves the product batch endpoints.
type ProductHandler struct {
	productService    domain.ProductService
	extractionService domain.ExtractionService
	nonces            domain.NonceIssuer
	encoder           domain.QREncoder
	maxBodySize       int64
	logger            domain.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(
	productService domain.ProductService,
	extractionService domain.ExtractionService,
	nonces domain.NonceIssuer,
	encoder domain.QREncoder,
	maxBodySize int64,
	logger domain.Logger,
) *ProductHandler {
	return &ProductHandler{
		productService:    productService,
		extractionService: extractionService,
		nonces:            nonces,
		encoder:           encoder,
		maxBodySize:       maxBodySize,
		logger:            logger,
	}
}

// ServeAction saves the posted batch. It runs behind the action dispatcher,
// which has already parsed the form.
func (h *ProductHandler) ServeAction(w http.ResponseWriter, r *http.Request) {
	user, _ := GetUserFromContext(r)

	nonce := r.FormValue("_nonce")
	if nonce == "" {
		nonce = r.Header.Get("X-CSRF-Token")
	}

	result, err := h.productService.SaveBatch(r.Context(), user, nonce, r.FormValue("items"))
	if err != nil {
		appErr := writeFailure(w, err)
		if appErr.StatusCode >= http.StatusInternalServerError {
			h.logger.Error("Failed to save product batch", err)
		} else {
			h.logger.Warn("Rejected product batch", "reason", err.Error())
		}
		return
	}

	writeSuccess(w, result)
}

// GetNonce issues a save token for the current user.
func (h *ProductHandler) GetNonce(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"nonce":  h.nonces.Create(user.ID, domain.SaveAction),
		"action": domain.SaveAction,
	})
}

type extractRequest struct {
	Pages []string `json:"pages"`
}

type extractResponse struct {
	Items []domain.ProductRecord `json:"items"`
}

// Extract runs the record heuristic over page text rendered in the browser.
func (h *ProductHandler) Extract(w http.ResponseWriter, r *http.Request) {
	if _, ok := GetUserFromContext(r); !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	items := h.extractionService.Extract(req.Pages)
	if items == nil {
		items = []domain.ProductRecord{}
	}
	h.logger.Debug("Extracted product records", "pages", len(req.Pages), "items", len(items))

	writeJSON(w, http.StatusOK, extractResponse{Items: items})
}

// maxPreviewLength keeps previews within what a version 40 code holds at level L.
const maxPreviewLength = 2953

// PreviewQR renders the QR code a reference will get when saved, so the review
// table can show it before anything is written.
func (h *ProductHandler) PreviewQR(w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get("reference")
	if reference == "" || len(reference) > maxPreviewLength {
		writeError(w, http.StatusBadRequest, "reference is required")
		return
	}

	png, err := h.encoder.EncodePNG(reference)
	if err != nil {
		h.logger.Warn("Failed to render QR preview", "error", err)
		writeError(w, http.StatusBadRequest, "Failed to render QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// GetGallery returns the current batch as JSON.
func (h *ProductHandler) GetGallery(w http.ResponseWriter, r *http.Request) {
	gallery, err := h.productService.Gallery(r.Context())
	if err != nil {
		h.logger.Error("Failed to load gallery", err)
		writeError(w, http.StatusInternalServerError, "Failed to load gallery")
		return
	}

	writeJSON(w, http.StatusOK, gallery)
}
