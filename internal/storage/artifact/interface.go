// Package artifact persists render output: chart rasters, vector files,
// schema documents, and comparison reports.
package artifact

import (
	"context"
	"fmt"

	"github.com/quantfolio/tapestry/internal/config"
	"github.com/quantfolio/tapestry/internal/core"
)

// Store is the sink the render pipeline writes artifacts to.
type Store interface {
	// Write stores data at the given path.
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path. A missing artifact is
	// ErrArtifactNotFound.
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all artifact paths under the prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the artifact at the given path.
	Delete(ctx context.Context, path string) error

	// Exists checks whether an artifact exists at the given path.
	Exists(ctx context.Context, path string) (bool, error)
}

// New creates an artifact store based on configuration.
func New(cfg config.ArtifactConfig) (Store, error) {
	switch cfg.Type {
	case "", "localfs":
		return NewLocalFS(cfg.Path)
	case "s3":
		return NewS3(cfg.S3)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown artifact store type: %s", cfg.Type))
	}
}
