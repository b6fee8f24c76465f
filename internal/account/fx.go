package account

import (
	"github.com/reelgate/reelgate/internal/account/repository"
	"github.com/reelgate/reelgate/internal/account/service"
	"go.uber.org/fx"
)

var Module = fx.Module("account.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
