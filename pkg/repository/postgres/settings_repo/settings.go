package settingsrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"currycrave/internal/structs"
	"currycrave/pkg/db"
	"currycrave/pkg/logger"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	Module = fx.Provide(New)
)

type (
	Params struct {
		fx.In
		Logger logger.Logger
		DB     db.Querier
	}

	// Repo stores the single delivery settings document. Writes are
	// optimistic: Write succeeds only if settings.Version is still current.
	Repo interface {
		Read(ctx context.Context) (structs.DeliverySettings, error)
		Write(ctx context.Context, settings structs.DeliverySettings) (structs.DeliverySettings, error)
	}

	repo struct {
		logger logger.Logger
		db     db.Querier
	}

	document struct {
		RestaurantLocations []structs.RestaurantLocation `json:"restaurantLocations"`
		RestaurantPincode   string                       `json:"restaurantPincode"`
		DeliveryRadius      float64                      `json:"deliveryRadius"`
		ServicablePincodes  []structs.ServicablePincode  `json:"servicablePincodes"`
	}
)

func New(p Params) Repo {
	return &repo{
		logger: p.Logger,
		db:     p.DB,
	}
}

func (r *repo) Read(ctx context.Context) (structs.DeliverySettings, error) {
	settings, err := r.selectSettings(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, structs.ErrNotFound) {
		return structs.DeliverySettings{}, err
	}

	if err := r.insertDefault(ctx); err != nil {
		return structs.DeliverySettings{}, err
	}
	return r.selectSettings(ctx)
}

func (r *repo) selectSettings(ctx context.Context) (structs.DeliverySettings, error) {
	var (
		raw       []byte
		version   int64
		updatedAt time.Time
		query     = `SELECT doc, version, updated_at FROM delivery_settings WHERE id = 1`
	)

	err := r.db.QueryRow(ctx, query).Scan(&raw, &version, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return structs.DeliverySettings{}, structs.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
			r.logger.Error(ctx, "delivery_settings table missing, were migrations applied?", zap.Error(err))
		} else {
			r.logger.Error(ctx, "err from r.db.QueryRow", zap.Error(err))
		}
		return structs.DeliverySettings{}, fmt.Errorf("read delivery settings: %w", err)
	}

	return decode(raw, version, updatedAt)
}

func (r *repo) insertDefault(ctx context.Context) error {
	raw, err := json.Marshal(encode(structs.DefaultDeliverySettings()))
	if err != nil {
		return fmt.Errorf("marshal default settings: %w", err)
	}

	// concurrent first reads race here, ON CONFLICT keeps the first one
	query := `
		INSERT INTO delivery_settings (id, doc, version, created_at, updated_at)
		VALUES (1, $1::jsonb, 1, now(), now())
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, string(raw)); err != nil {
		r.logger.Error(ctx, "failed to insert default delivery settings", zap.Error(err))
		return fmt.Errorf("insert default settings: %w", err)
	}
	return nil
}

func (r *repo) Write(ctx context.Context, settings structs.DeliverySettings) (structs.DeliverySettings, error) {
	raw, err := json.Marshal(encode(settings))
	if err != nil {
		return structs.DeliverySettings{}, fmt.Errorf("marshal settings: %w", err)
	}

	var (
		version   int64
		updatedAt time.Time
		query     = `
			UPDATE delivery_settings
			SET doc = $1::jsonb, version = version + 1, updated_at = now()
			WHERE id = 1 AND version = $2
			RETURNING version, updated_at
		`
	)

	err = r.db.QueryRow(ctx, query, string(raw), settings.Version).Scan(&version, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn(ctx, "stale delivery settings write rejected", zap.Int64("version", settings.Version))
			return structs.DeliverySettings{}, structs.ErrConflict
		}
		r.logger.Error(ctx, "failed to update delivery settings", zap.Error(err))
		return structs.DeliverySettings{}, fmt.Errorf("update delivery settings: %w", err)
	}

	settings.Version = version
	settings.UpdatedAt = updatedAt
	return settings, nil
}

func encode(s structs.DeliverySettings) document {
	return document{
		RestaurantLocations: s.RestaurantLocations,
		RestaurantPincode:   s.RestaurantPincode,
		DeliveryRadius:      s.DeliveryRadius,
		ServicablePincodes:  s.ServicablePincodes,
	}
}

func decode(raw []byte, version int64, updatedAt time.Time) (structs.DeliverySettings, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return structs.DeliverySettings{}, fmt.Errorf("decode delivery settings: %w", err)
	}

	s := structs.DeliverySettings{
		RestaurantLocations: doc.RestaurantLocations,
		RestaurantPincode:   doc.RestaurantPincode,
		DeliveryRadius:      doc.DeliveryRadius,
		ServicablePincodes:  doc.ServicablePincodes,
		Version:             version,
		UpdatedAt:           updatedAt,
	}
	if s.RestaurantLocations == nil {
		s.RestaurantLocations = []structs.RestaurantLocation{}
	}
	if s.ServicablePincodes == nil {
		s.ServicablePincodes = []structs.ServicablePincode{}
	}
	if s.DeliveryRadius == 0 {
		s.DeliveryRadius = structs.DefaultDeliveryRadius
	}
	return s, nil
}
