package domain

import (
	"context"
	"net/http"
)

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetUploadPath() string
	GetUploadBaseURL() string
	GetProductsDir() string
	GetMaxFileSize() int64
	GetLogLevel() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetSupabaseBucket() string
	GetNonceSecret() string
	GetNonceLifetimeHours() int
	GetLoginURL() string
	GetAssetsURL() string
	GetAllowedOrigins() []string
}

// AuthService resolves an access token issued by the identity provider.
type AuthService interface {
	ValidateToken(token string) (*SupabaseUser, error)
}

// NonceIssuer creates anti-forgery tokens bound to a user and an action.
type NonceIssuer interface {
	Create(userID, action string) string
}

// NonceVerifier checks anti-forgery tokens created by a NonceIssuer.
type NonceVerifier interface {
	Verify(userID, action, nonce string) bool
}

// QREncoder renders a reference string into PNG bytes.
type QREncoder interface {
	EncodePNG(content string) ([]byte, error)
}

// ManifestCodec reads and writes the CSV manifest.
type ManifestCodec interface {
	Encode(rows []ManifestRow) ([]byte, error)
	Decode(data []byte) ([]ManifestRow, error)
}

// ArtifactRepository owns the artifact directory on disk.
type ArtifactRepository interface {
	// Replace swaps the directory contents for the given batch.
	Replace(ctx context.Context, batch *ArtifactBatch) error
	// Manifest returns the rows of the current products.csv, or none when no batch was saved.
	Manifest(ctx context.Context) ([]ManifestRow, error)
	// Dir returns the absolute artifact directory path.
	Dir() string
}

// ArtifactMirror copies a saved batch to remote storage.
type ArtifactMirror interface {
	Enabled() bool
	Mirror(ctx context.Context, batch *ArtifactBatch, stale []string) error
}

// ProductService defines the use-case operations for product batches.
type ProductService interface {
	SaveBatch(ctx context.Context, user *SupabaseUser, nonce string, rawItems string) (*SaveResult, error)
	Gallery(ctx context.Context) (*Gallery, error)
	ManifestURL() string
}

// ExtractionService turns rendered page text into candidate records.
type ExtractionService interface {
	Extract(pages []string) []ProductRecord
}

// ActionHandler handles one action of the ajax-style dispatcher.
type ActionHandler interface {
	ServeAction(w http.ResponseWriter, r *http.Request)
}
