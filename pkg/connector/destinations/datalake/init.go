package datalake

import (
	"github.com/lakeferry/lakeferry/pkg/config"
	"github.com/lakeferry/lakeferry/pkg/connector/core"
	"github.com/lakeferry/lakeferry/pkg/connector/registry"
)

func init() {
	// Register the data lake destination with the registry
	_ = registry.GetRegistry().RegisterDestination("datalake", func(cfg *config.Config) (core.Destination, error) {
		return NewDestination(cfg)
	}) // Ignore registration error - will fail later if needed
}
