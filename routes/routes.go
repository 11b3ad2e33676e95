package routes

import (
	"context"
	"fmt"

	"nimbusdrive/config"
	"nimbusdrive/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// ServiceContainer holds every service the route groups depend on.
type ServiceContainer struct {
	DB          *mongo.Database
	BlobStore   services.BlobStore
	ViewService *services.ViewService
	FileService *services.FileService
	AuthService *services.AuthService
	JWTSecret   string
}

// BuildServiceContainer wires the blob store, view engine, and file and auth
// services from the loaded configuration.
func BuildServiceContainer(ctx context.Context, db *mongo.Database, cfg *config.Config) (*ServiceContainer, error) {
	blobStore, err := buildBlobStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s storage backend: %w", cfg.StorageBackend, err)
	}

	viewService := services.NewViewService(db, cfg.QuotaBytes)
	fileService := services.NewFileService(db, blobStore, viewService, cfg.MaxFileSize, cfg.QuotaBytes)
	authService := services.NewAuthService(db, cfg.SessionDefaultTTL, cfg.SessionRememberTTL, cfg.ResetTokenTTL, cfg.JWTSecret, cfg.JWTExpiration)

	return &ServiceContainer{
		DB:          db,
		BlobStore:   blobStore,
		ViewService: viewService,
		FileService: fileService,
		AuthService: authService,
		JWTSecret:   cfg.JWTSecret,
	}, nil
}

func buildBlobStore(ctx context.Context, cfg *config.Config) (services.BlobStore, error) {
	switch cfg.StorageBackend {
	case "b2":
		return services.NewB2Store(ctx, cfg.B2ApplicationKeyID, cfg.B2ApplicationKey, cfg.B2BucketName)
	case "minio":
		return services.NewMinioStore(ctx, services.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return services.NewDiskStore(cfg.UploadsDir)
	}
}

// SetupRoutes registers all route groups under the given API group.
func SetupRoutes(api *gin.RouterGroup, container *ServiceContainer) {
	RegisterAuthRoutes(api, container)
	RegisterFileRoutes(api, container)
}
