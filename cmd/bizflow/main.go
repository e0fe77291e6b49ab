package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizflow/internal/clock"
	"github.com/smallbiznis/bizflow/internal/config"
	"github.com/smallbiznis/bizflow/internal/migration"
	"github.com/smallbiznis/bizflow/internal/observability"
	"github.com/smallbiznis/bizflow/internal/server"
	"github.com/smallbiznis/bizflow/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		server.Module,
		migration.Module,
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
