package billing

import (
	billingdomain "github.com/reelgate/reelgate/internal/billing/domain"
	"github.com/reelgate/reelgate/internal/billing/repository"
	"github.com/reelgate/reelgate/internal/billing/service"
	"github.com/reelgate/reelgate/internal/billing/stripe"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(repository.Provide),
	fx.Provide(func(a *stripe.Adapter) billingdomain.Provider { return a }),
	fx.Provide(stripe.New),
	fx.Provide(service.New),
)
