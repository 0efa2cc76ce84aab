package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"pdf-to-qr-products/internal/config"
	"pdf-to-qr-products/internal/domain"
	"pdf-to-qr-products/internal/handler"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}
	// Wiring
	container := config.NewContainer()
	cfg := container.Config

	// Handlers
	authMiddleware := handler.NewAuthMiddleware(
		container.AuthService,
		container.Logger,
	)

	productHandler := handler.NewProductHandler(
		container.ProductService,
		container.ExtractionService,
		container.NonceService,
		container.QREncoder,
		cfg.GetMaxFileSize(),
		container.Logger,
	)

	pageHandler := handler.NewPageHandler(
		container.ProductService,
		container.NonceService,
		cfg.GetLoginURL(),
		cfg.GetAssetsURL(),
		container.Logger,
	)

	dispatcher := handler.NewActionDispatcher(cfg.GetMaxFileSize(), container.Logger)
	dispatcher.Register(domain.SaveAction, productHandler)

	uploadRoot, err := filepath.Abs(cfg.GetUploadPath())
	if err != nil {
		uploadRoot = cfg.GetUploadPath()
	}

	// Router
	router := handler.NewRouter(
		handler.NewAuthHandler(),
		productHandler,
		pageHandler,
		dispatcher,
		authMiddleware,
		handler.RouterOptions{
			UploadRoot:     uploadRoot,
			UploadBaseURL:  cfg.GetUploadBaseURL(),
			AllowedOrigins: cfg.GetAllowedOrigins(),
		},
	)

	// start server
	server := &http.Server{
		Addr:              ":" + cfg.GetServerPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server
	go func() {
		container.Logger.Info("Server listening", "address", server.Addr, "artifacts", container.ArtifactRepository.Dir())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Error("Server failed to start", err)
			os.Exit(1)
		}
	}()
	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	container.Logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		container.Logger.Error("Graceful shutdown failed", err)
		_ = server.Close()
	}

	container.Logger.Info("Server exited")
}
