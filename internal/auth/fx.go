package auth

import (
	"github.com/altibbe/hedamo/internal/auth/repository"
	"github.com/altibbe/hedamo/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
