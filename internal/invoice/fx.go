package invoice

import (
	"github.com/smallbiznis/bizflow/internal/invoice/repository"
	"github.com/smallbiznis/bizflow/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
