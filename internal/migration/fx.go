package migration

import (
	accountdomain "github.com/reelgate/reelgate/internal/account/domain"
	apikeydomain "github.com/reelgate/reelgate/internal/apikey/domain"
	authdomain "github.com/reelgate/reelgate/internal/auth/domain"
	billingdomain "github.com/reelgate/reelgate/internal/billing/domain"
	catalogdomain "github.com/reelgate/reelgate/internal/catalog/domain"
	"github.com/reelgate/reelgate/internal/config"
	ledgerdomain "github.com/reelgate/reelgate/internal/ledger/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "sqlite" {
			// Embedded development databases are migrated from the models.
			return conn.AutoMigrate(
				&accountdomain.Account{},
				&authdomain.Session{},
				&apikeydomain.APIKey{},
				&ledgerdomain.Transaction{},
				&catalogdomain.Title{},
				&billingdomain.PaymentEvent{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB, cfg.DBType)
	}),
)
