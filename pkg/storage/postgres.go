package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrymomot/marketbridge/pkg/marketplace"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore is the pgx-backed SubscriptionStore.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres subscription store. Panics on a nil
// pool to fail fast during initialization.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("storage: pgx pool is required")
	}
	return &PostgresStore{pool: pool}
}

// Migrate applies the embedded schema migrations. Goose works against
// database/sql, so the pgx pool is bridged through stdlib.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrFailedToMigrate, err)
	}

	db := stdlib.OpenDBFromPool(s.pool)
	defer func(db *sql.DB) { _ = db.Close() }(db)

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return errors.Join(ErrFailedToMigrate, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, subscriptionID string) (*marketplace.Subscription, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("%w: subscription ID is required", ErrInvalidSubscription)
	}

	const query = `
		SELECT id, name, offer_id, plan_id, seat_quantity, status, is_test, is_free_trial,
		       term_start, term_end, term_unit,
		       beneficiary_user_id, beneficiary_email, beneficiary_object_id, beneficiary_tenant_id,
		       purchaser_user_id, purchaser_email, purchaser_object_id, purchaser_tenant_id,
		       created_at, updated_at
		FROM subscriptions WHERE id = $1`

	var sub marketplace.Subscription
	row := s.pool.QueryRow(ctx, query, subscriptionID)
	err := row.Scan(
		&sub.ID, &sub.Name, &sub.OfferID, &sub.PlanID, &sub.SeatQuantity, &sub.Status,
		&sub.IsTest, &sub.IsFreeTrial,
		&sub.Term.StartDate, &sub.Term.EndDate, &sub.Term.Unit,
		&sub.Beneficiary.UserID, &sub.Beneficiary.Email, &sub.Beneficiary.ObjectID, &sub.Beneficiary.DirectoryTenant,
		&sub.Purchaser.UserID, &sub.Purchaser.Email, &sub.Purchaser.ObjectID, &sub.Purchaser.DirectoryTenant,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, errors.Join(ErrFailedToQuery, err)
	}
	return &sub, nil
}

func (s *PostgresStore) Save(ctx context.Context, sub *marketplace.Subscription) error {
	if sub == nil || sub.ID == "" {
		return fmt.Errorf("%w: subscription with ID is required", ErrInvalidSubscription)
	}

	const query = `
		INSERT INTO subscriptions (
			id, name, offer_id, plan_id, seat_quantity, status, is_test, is_free_trial,
			term_start, term_end, term_unit,
			beneficiary_user_id, beneficiary_email, beneficiary_object_id, beneficiary_tenant_id,
			purchaser_user_id, purchaser_email, purchaser_object_id, purchaser_tenant_id,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			offer_id = EXCLUDED.offer_id,
			plan_id = EXCLUDED.plan_id,
			seat_quantity = EXCLUDED.seat_quantity,
			status = EXCLUDED.status,
			is_test = EXCLUDED.is_test,
			is_free_trial = EXCLUDED.is_free_trial,
			term_start = EXCLUDED.term_start,
			term_end = EXCLUDED.term_end,
			term_unit = EXCLUDED.term_unit,
			beneficiary_user_id = EXCLUDED.beneficiary_user_id,
			beneficiary_email = EXCLUDED.beneficiary_email,
			beneficiary_object_id = EXCLUDED.beneficiary_object_id,
			beneficiary_tenant_id = EXCLUDED.beneficiary_tenant_id,
			purchaser_user_id = EXCLUDED.purchaser_user_id,
			purchaser_email = EXCLUDED.purchaser_email,
			purchaser_object_id = EXCLUDED.purchaser_object_id,
			purchaser_tenant_id = EXCLUDED.purchaser_tenant_id,
			updated_at = EXCLUDED.updated_at`

	_, err := s.pool.Exec(ctx, query,
		sub.ID, sub.Name, sub.OfferID, sub.PlanID, sub.SeatQuantity, sub.Status,
		sub.IsTest, sub.IsFreeTrial,
		sub.Term.StartDate, sub.Term.EndDate, sub.Term.Unit,
		sub.Beneficiary.UserID, sub.Beneficiary.Email, sub.Beneficiary.ObjectID, sub.Beneficiary.DirectoryTenant,
		sub.Purchaser.UserID, sub.Purchaser.Email, sub.Purchaser.ObjectID, sub.Purchaser.DirectoryTenant,
		sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return errors.Join(ErrFailedToSave, err)
	}
	return nil
}
