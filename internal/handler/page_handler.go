package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"pdf-to-qr-products/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	ajaxPath       = "/api/v1/ajax"
	extractPath    = "/api/v1/products/extract"
	galleryAPIPath = "/api/v1/products/gallery"
	qrPreviewPath  = "/api/v1/products/qr"

	loginRedirectSeconds = 5
)

// PageHandler renders the upload form and the gallery.
type PageHandler struct {
	productService domain.ProductService
	nonces         domain.NonceIssuer
	loginURL       string
	assetsURL      string
	templates      *template.Template
	logger         domain.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(
	productService domain.ProductService,
	nonces domain.NonceIssuer,
	loginURL string,
	assetsURL string,
	logger domain.Logger,
) *PageHandler {
	return &PageHandler{
		productService: productService,
		nonces:         nonces,
		loginURL:       loginURL,
		assetsURL:      assetsURL,
		templates:      template.Must(template.ParseFS(templateFS, "templates/*.html")),
		logger:         logger,
	}
}

type pageData struct {
	Title     string
	AssetsURL string
}

type loginPage struct {
	pageData
	LoginURL        string
	RedirectSeconds int
}

type uploadPage struct {
	pageData
	AjaxURL    string
	ExtractURL string
	GalleryURL string
	PreviewURL string
	Action     string
	Nonce      string
}

type galleryPage struct {
	pageData
	Gallery *domain.Gallery
}

// Upload shows the upload form to signed-in users and a login message with a
// delayed redirect to everyone else.
func (h *PageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		h.render(w, "login.html", loginPage{
			pageData:        pageData{Title: "Log in", AssetsURL: h.assetsURL},
			LoginURL:        h.loginURL,
			RedirectSeconds: loginRedirectSeconds,
		})
		return
	}

	h.render(w, "upload.html", uploadPage{
		pageData:   pageData{Title: "PDF to QR products", AssetsURL: h.assetsURL},
		AjaxURL:    ajaxPath,
		ExtractURL: extractPath,
		GalleryURL: galleryAPIPath,
		PreviewURL: qrPreviewPath,
		Action:     domain.SaveAction,
		Nonce:      h.nonces.Create(user.ID, domain.SaveAction),
	})
}

// Gallery lists the products of the current batch.
func (h *PageHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	gallery, err := h.productService.Gallery(r.Context())
	if err != nil {
		h.logger.Error("Failed to load gallery", err)
		http.Error(w, "Failed to load gallery", http.StatusInternalServerError)
		return
	}

	h.render(w, "gallery.html", galleryPage{
		pageData: pageData{Title: "Products", AssetsURL: h.assetsURL},
		Gallery:  gallery,
	})
}

func (h *PageHandler) render(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("Failed to render page", err, "template", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
