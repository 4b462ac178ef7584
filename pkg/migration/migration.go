package migration

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"currycrave/pkg/config"
	"currycrave/pkg/logger"
)

var Module = fx.Options(
	fx.Invoke(New),
)

type Params struct {
	fx.In
	Logger logger.Logger
	Config config.IConfig
}

// New applies pending migrations before the repositories are used. A failure
// aborts application start.
func New(p Params) error {
	ctx := context.TODO()

	source := p.Config.GetString("database.migrations_path")
	if source == "" {
		source = "file://migrations"
	}

	m, err := migrate.New(source, p.Config.GetString("database.migration"))
	if err != nil {
		p.Logger.Error(ctx, "err from migration.New", zap.Error(err))
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		p.Logger.Error(ctx, "err from up migration", zap.Error(err))
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	p.Logger.Info(ctx, "migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
