package internal

import (
	"currycrave/internal/delivery"
	"currycrave/internal/geocoding"
	"currycrave/internal/pincode"

	"go.uber.org/fx"
)

var Module = fx.Options(
	pincode.Module,
	geocoding.Module,
	delivery.Module,
)
