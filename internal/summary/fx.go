package summary

import (
	"github.com/countrypulse/countrypulse/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("summary",
	fx.Provide(func(cfg config.Config) Generator {
		return NewGenerator(cfg.CacheDir)
	}),
)
