package auth

import (
	"github.com/smallbiznis/bizflow/internal/auth/repository"
	"github.com/smallbiznis/bizflow/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
