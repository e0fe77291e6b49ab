package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AgingBucket groups overdue invoices by days past due for report breakdowns.
type AgingBucket struct {
	Label   string `mapstructure:"label"`
	MinDays int    `mapstructure:"minDays"`
	MaxDays *int   `mapstructure:"maxDays"`
}

// ReportingConfig tunes report output without a redeploy.
type ReportingConfig struct {
	AgingBuckets   []AgingBucket `mapstructure:"agingBuckets"`
	TopClientLimit int           `mapstructure:"topClientLimit"`
	MonthsOfTrend  int           `mapstructure:"monthsOfTrend"`
}

func DefaultReportingConfig() ReportingConfig {
	return ReportingConfig{
		AgingBuckets: []AgingBucket{
			{Label: "0-30", MinDays: 0, MaxDays: intPtr(30)},
			{Label: "31-60", MinDays: 31, MaxDays: intPtr(60)},
			{Label: "60+", MinDays: 61, MaxDays: nil},
		},
		TopClientLimit: 5,
		MonthsOfTrend:  6,
	}
}

func intPtr(v int) *int { return &v }

// ReportingConfigHolder hot-reloads reporting.yml when it changes on disk.
type ReportingConfigHolder struct {
	current atomic.Value // holds ReportingConfig
}

func NewReportingConfigHolder() (*ReportingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("reporting")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/bizflow")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BIZFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		holder := &ReportingConfigHolder{}
		holder.current.Store(DefaultReportingConfig())
		return holder, nil
	}

	var cfg ReportingConfig
	if err := v.UnmarshalKey("reporting", &cfg); err != nil {
		return nil, err
	}
	if err := validateReportingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ReportingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ReportingConfig
		if err := v.UnmarshalKey("reporting", &updated); err != nil {
			log.Printf("[reporting-config] reload failed: %v", err)
			return
		}
		if err := validateReportingConfig(updated); err != nil {
			log.Printf("[reporting-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[reporting-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *ReportingConfigHolder) Get() ReportingConfig {
	return h.current.Load().(ReportingConfig)
}

func validateReportingConfig(cfg ReportingConfig) error {
	if len(cfg.AgingBuckets) == 0 {
		return errors.New("reporting.agingBuckets cannot be empty")
	}
	if cfg.TopClientLimit <= 0 {
		return errors.New("reporting.topClientLimit must be positive")
	}
	if cfg.MonthsOfTrend <= 0 {
		return errors.New("reporting.monthsOfTrend must be positive")
	}
	return nil
}
