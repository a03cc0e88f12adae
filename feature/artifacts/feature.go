package artifacts

import (
	"github.com/asdfjk123/renode/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature mounts the artifact routes on the API server.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new artifacts feature.
func NewFeature(client storage.Client, bucket, cacheDir string, logger *zap.Logger) *Feature {
	svc := NewService(client, bucket, cacheDir, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "artifacts"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.service.client != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Service returns the underlying fetch service.
func (f *Feature) Service() *Service {
	return f.service
}
