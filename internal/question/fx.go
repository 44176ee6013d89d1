package question

import (
	"github.com/altibbe/hedamo/internal/question/repository"
	"github.com/altibbe/hedamo/internal/question/service"
	"go.uber.org/fx"
)

var Module = fx.Module("question.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
