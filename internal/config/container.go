package config

import (
	"path/filepath"
	"time"

	"pdf-to-qr-products/internal/domain"
	"pdf-to-qr-products/internal/infra/supabase"
	"pdf-to-qr-products/internal/repository"
	"pdf-to-qr-products/internal/service"
	"pdf-to-qr-products/pkg/logger"

	"github.com/google/uuid"
)

// Container holds all application dependencies
type Container struct {
	Config             domain.Config
	Logger             domain.Logger
	SupabaseClient     domain.SupabaseClient
	AuthService        domain.AuthService
	NonceService       *service.NonceService
	ArtifactRepository domain.ArtifactRepository
	QREncoder          domain.QREncoder
	ProductService     domain.ProductService
	ExtractionService  domain.ExtractionService
}

// placeholderSecret is the well-known sample JWT_SECRET value.
const placeholderSecret = "your-secret-key-change-in-production"

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return NewContainerWithConfig(NewConfig())
}

// NewContainerWithConfig wires every dependency from an existing configuration.
func NewContainerWithConfig(config domain.Config) *Container {
	appLogger := logger.NewLogger(config.GetLogLevel())

	supabaseClient := supabase.NewSupabaseClient(config, appLogger)
	if err := supabaseClient.Initialize(); err != nil {
		appLogger.Warn("Supabase client not available, every request will be anonymous", "error", err)
	}
	authService := service.NewAuthService(supabaseClient, appLogger)

	secret := config.GetNonceSecret()
	if secret == "" || secret == placeholderSecret {
		// Tokens issued before a restart stop verifying.
		secret = uuid.NewString()
		appLogger.Warn("NONCE_SECRET not set, using a per-process secret")
	}
	nonces := service.NewNonceService(secret, time.Duration(config.GetNonceLifetimeHours())*time.Hour)

	uploadRoot, err := filepath.Abs(config.GetUploadPath())
	if err != nil {
		uploadRoot = config.GetUploadPath()
	}
	encoder := service.NewQREncoder()
	manifest := service.NewManifestCodec()
	artifacts := repository.NewFileArtifactRepository(uploadRoot, config.GetProductsDir(), manifest, appLogger)

	mirror := service.NewStorageService(
		config.GetSupabaseURL(),
		config.GetSupabaseKey(),
		config.GetSupabaseBucket(),
		config.GetProductsDir(),
	)
	if mirror.Enabled() {
		appLogger.Info("Mirroring product batches to Supabase Storage", "bucket", config.GetSupabaseBucket())
	}

	products := service.NewProductService(
		artifacts,
		encoder,
		manifest,
		nonces,
		mirror,
		appLogger,
		config.GetUploadBaseURL()+"/"+config.GetProductsDir(),
	)

	return &Container{
		Config:             config,
		Logger:             appLogger,
		SupabaseClient:     supabaseClient,
		AuthService:        authService,
		NonceService:       nonces,
		ArtifactRepository: artifacts,
		QREncoder:          encoder,
		ProductService:     products,
		ExtractionService:  service.NewExtractionService(),
	}
}
