package main

import (
	"github.com/altibbe/hedamo/internal/assessment"
	"github.com/altibbe/hedamo/internal/auth"
	"github.com/altibbe/hedamo/internal/clock"
	"github.com/altibbe/hedamo/internal/config"
	"github.com/altibbe/hedamo/internal/migration"
	"github.com/altibbe/hedamo/internal/observability"
	"github.com/altibbe/hedamo/internal/product"
	"github.com/altibbe/hedamo/internal/providers"
	"github.com/altibbe/hedamo/internal/question"
	"github.com/altibbe/hedamo/internal/ratelimit"
	"github.com/altibbe/hedamo/internal/report"
	"github.com/altibbe/hedamo/internal/server"
	"github.com/altibbe/hedamo/internal/storage"
	"github.com/altibbe/hedamo/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,
		db.Module,
		migration.Module,
		storage.Module,
		ratelimit.Module,
		assessment.Module,
		providers.Module,

		auth.Module,
		product.Module,
		question.Module,
		report.Module,

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
