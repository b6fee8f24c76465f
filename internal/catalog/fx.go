package catalog

import (
	"github.com/reelgate/reelgate/internal/catalog/repository"
	"github.com/reelgate/reelgate/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
