package refresh

import (
	"github.com/countrypulse/countrypulse/internal/refresh/service"
	"go.uber.org/fx"
)

var Module = fx.Module("refresh.service",
	fx.Provide(service.New),
)
