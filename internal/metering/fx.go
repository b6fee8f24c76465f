package metering

import (
	"github.com/reelgate/reelgate/internal/metering/repository"
	"github.com/reelgate/reelgate/internal/metering/service"
	"go.uber.org/fx"
)

var Module = fx.Module("metering.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
