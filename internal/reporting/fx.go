package reporting

import (
	"github.com/smallbiznis/bizflow/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("reporting.service",
	fx.Provide(config.NewReportingConfigHolder),
	fx.Provide(New),
)
