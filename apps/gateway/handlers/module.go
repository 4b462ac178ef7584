package handlers

import (
	"currycrave/apps/gateway/handlers/delivery"
	"currycrave/apps/gateway/handlers/middleware"

	"go.uber.org/fx"
)

var Module = fx.Options(
	middleware.Module,
	delivery.Module,
)
