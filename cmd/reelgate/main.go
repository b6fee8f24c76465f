package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/reelgate/reelgate/internal/clock"
	"github.com/reelgate/reelgate/internal/config"
	"github.com/reelgate/reelgate/internal/migration"
	"github.com/reelgate/reelgate/internal/observability"
	"github.com/reelgate/reelgate/internal/server"
	"github.com/reelgate/reelgate/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
