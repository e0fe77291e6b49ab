package client

import (
	"github.com/smallbiznis/bizflow/internal/client/repository"
	"github.com/smallbiznis/bizflow/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
