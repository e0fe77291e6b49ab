package subscription

import (
	"github.com/smallbiznis/bizflow/internal/paystack"
	"github.com/smallbiznis/bizflow/internal/subscription/repository"
	"github.com/smallbiznis/bizflow/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.New),
	fx.Provide(func(c *paystack.Client) service.Gateway { return c }),
	fx.Provide(service.New),
)
