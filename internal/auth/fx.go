package auth

import (
	"github.com/reelgate/reelgate/internal/auth/repository"
	"github.com/reelgate/reelgate/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.ProvideSessionRepository),
	fx.Provide(service.New),
)
