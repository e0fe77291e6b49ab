package paystack

import "go.uber.org/fx"

var Module = fx.Module("paystack",
	fx.Provide(New),
)
