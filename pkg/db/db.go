package db

import (
	"context"

	"currycrave/pkg/config"
	"currycrave/pkg/logger"
	"currycrave/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(NewDBConn),
)

type Querier interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...interface{}) pgx.Row
}

type Params struct {
	fx.In
	Lifecycle fx.Lifecycle
	Config    config.IConfig
	Logger    logger.Logger
}

type dbConn struct {
	dbPool *pgxpool.Pool
	logger logger.Logger
}

func NewDBConn(params Params) (Querier, error) {
	var (
		dns = params.Config.GetString("database.dns")
		ctx = context.Background()
	)

	poolCfg, err := pgxpool.ParseConfig(dns)
	if err != nil {
		params.Logger.Error(ctx, "Err on pgxpool.ParseConfig", zap.Error(err))
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		params.Logger.Error(ctx, "Err on pgxpool.NewWithConfig", zap.Error(err), zap.String("host", poolCfg.ConnConfig.Host))
		return nil, err
	}

	if err = pool.Ping(ctx); err != nil {
		params.Logger.Error(ctx, "Err on db.Ping", zap.Error(err), zap.String("host", poolCfg.ConnConfig.Host))
		pool.Close()
		return nil, err
	}

	params.Logger.Info(ctx, "DB: Connected successfully",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.String("database", poolCfg.ConnConfig.Database),
	)

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return &dbConn{
		dbPool: pool,
		logger: params.Logger,
	}, nil
}

func (db *dbConn) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	db.logger.Debug(ctx, "DB: Exec sql", zap.String("sql", utils.CompactSQL(sql)), zap.Any("args", args))
	return db.dbPool.Exec(ctx, sql, args...)
}

func (db *dbConn) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	db.logger.Debug(ctx, "DB: Query sql", zap.String("sql", utils.CompactSQL(sql)), zap.Any("args", args))
	return db.dbPool.Query(ctx, sql, args...)
}

func (db *dbConn) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	db.logger.Debug(ctx, "DB: QueryRow sql", zap.String("sql", utils.CompactSQL(sql)), zap.Any("args", args))
	return db.dbPool.QueryRow(ctx, sql, args...)
}

func (db *dbConn) Begin(ctx context.Context) (pgx.Tx, error) {
	return db.dbPool.Begin(ctx)
}
