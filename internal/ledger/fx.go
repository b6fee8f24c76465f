package ledger

import (
	"github.com/reelgate/reelgate/internal/ledger/repository"
	"github.com/reelgate/reelgate/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
