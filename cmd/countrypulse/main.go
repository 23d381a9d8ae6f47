package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/countrypulse/countrypulse/internal/clock"
	"github.com/countrypulse/countrypulse/internal/config"
	"github.com/countrypulse/countrypulse/internal/country"
	"github.com/countrypulse/countrypulse/internal/migration"
	"github.com/countrypulse/countrypulse/internal/observability"
	"github.com/countrypulse/countrypulse/internal/refresh"
	"github.com/countrypulse/countrypulse/internal/server"
	"github.com/countrypulse/countrypulse/internal/summary"
	"github.com/countrypulse/countrypulse/internal/upstream"
	"github.com/countrypulse/countrypulse/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional domains
		upstream.Module,
		country.Module,
		summary.Module,
		refresh.Module,

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
