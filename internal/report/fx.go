package report

import (
	"github.com/altibbe/hedamo/internal/report/repository"
	"github.com/altibbe/hedamo/internal/report/service"
	"go.uber.org/fx"
)

var Module = fx.Module("report.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
