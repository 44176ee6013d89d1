package product

import (
	"github.com/altibbe/hedamo/internal/product/repository"
	"github.com/altibbe/hedamo/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
