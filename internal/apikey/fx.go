package apikey

import (
	"github.com/reelgate/reelgate/internal/apikey/repository"
	"github.com/reelgate/reelgate/internal/apikey/service"
	"go.uber.org/fx"
)

var Module = fx.Module("apikey.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
