package pkg

import (
	"go.uber.org/fx"

	"currycrave/pkg/config"
	"currycrave/pkg/db"
	"currycrave/pkg/logger"
	"currycrave/pkg/migration"
	"currycrave/pkg/redis"
	"currycrave/pkg/reply"
	"currycrave/pkg/repository"
)

var Module = fx.Options(
	config.Module,
	logger.Module,
	migration.Module,
	repository.Module,
	db.Module,
	reply.Module,
	redis.Module,
)
