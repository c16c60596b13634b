package mongodb

import (
	"github.com/lakeferry/lakeferry/pkg/config"
	"github.com/lakeferry/lakeferry/pkg/connector/core"
	"github.com/lakeferry/lakeferry/pkg/connector/registry"
)

func init() {
	// Register the MongoDB source with the registry
	_ = registry.GetRegistry().RegisterSource("mongodb", func(cfg *config.Config) (core.Source, error) {
		return NewSource(cfg)
	}) // Ignore registration error - will fail later if needed
}
