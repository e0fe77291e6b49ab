package expense

import (
	"github.com/smallbiznis/bizflow/internal/expense/repository"
	"github.com/smallbiznis/bizflow/internal/expense/service"
	"go.uber.org/fx"
)

var Module = fx.Module("expense.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
