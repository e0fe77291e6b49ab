package payment

import (
	"github.com/smallbiznis/bizflow/internal/paystack"
	"github.com/smallbiznis/bizflow/internal/payment/repository"
	"github.com/smallbiznis/bizflow/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.New),
	fx.Provide(func(c *paystack.Client) service.Gateway { return c }),
	fx.Provide(service.New),
)
