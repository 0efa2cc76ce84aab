package handler

import (
	"net/http"
	"path"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// RouterOptions carries the settings the router needs besides its handlers.
type RouterOptions struct {
	// UploadRoot is served under UploadBaseURL when that is a local path.
	UploadRoot     string
	UploadBaseURL  string
	AllowedOrigins []string
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(
	authHandler *AuthHandler,
	productHandler *ProductHandler,
	pageHandler *PageHandler,
	dispatcher *ActionDispatcher,
	authMiddleware *AuthMiddleware,
	opts RouterOptions,
) http.Handler {
	router := mux.NewRouter()

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"pdf-to-qr-products"}`))
	}).Methods("GET")

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()

	// The dispatcher answers anonymous callers itself.
	api.Handle("/ajax", authMiddleware.Optional(dispatcher)).Methods("POST")
	api.HandleFunc("/products/gallery", productHandler.GetGallery).Methods("GET")

	// Protected routes (require authentication)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(authMiddleware.Middleware)

	protected.HandleFunc("/auth/profile", authHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/auth/validate", authHandler.ValidateToken).Methods("GET")

	protected.HandleFunc("/products/nonce", productHandler.GetNonce).Methods("GET")
	protected.HandleFunc("/products/extract", productHandler.Extract).Methods("POST")
	protected.HandleFunc("/products/qr", productHandler.PreviewQR).Methods("GET")

	// Static artifacts
	if prefix := strings.TrimRight(opts.UploadBaseURL, "/"); strings.HasPrefix(prefix, "/") && opts.UploadRoot != "" {
		files := http.StripPrefix(prefix, http.FileServer(http.Dir(opts.UploadRoot)))
		router.PathPrefix(prefix + "/").Handler(hideInternalPaths(files)).Methods("GET", "HEAD")
	}

	// Pages
	router.Handle("/", authMiddleware.Optional(http.HandlerFunc(pageHandler.Upload))).Methods("GET")
	router.HandleFunc("/gallery", pageHandler.Gallery).Methods("GET")

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-CSRF-Token",
		},
		ExposedHeaders: []string{
			"Link",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}

// hideInternalPaths answers 404 for directory listings and for dot-prefixed
// entries such as the staging directories used during a save.
func hideInternalPaths(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if p == "" || strings.HasSuffix(p, "/") {
			http.NotFound(w, r)
			return
		}
		for _, segment := range strings.Split(path.Clean("/"+p), "/") {
			if strings.HasPrefix(segment, ".") {
				http.NotFound(w, r)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
