package country

import (
	"github.com/countrypulse/countrypulse/internal/country/repository"
	"github.com/countrypulse/countrypulse/internal/country/service"
	"go.uber.org/fx"
)

var Module = fx.Module("country.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
