package postgres

import (
	settingsrepo "currycrave/pkg/repository/postgres/settings_repo"

	"go.uber.org/fx"
)

var Module = fx.Options(
	settingsrepo.Module,
)
