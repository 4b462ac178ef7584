package repository

import (
	"go.uber.org/fx"

	"currycrave/pkg/repository/postgres"
)

var Module = fx.Options(
	postgres.Module,
)
