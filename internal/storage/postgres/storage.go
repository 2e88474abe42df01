package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "omsrelay/internal/domain/errors"
	"omsrelay/internal/domain/model"
)

// DB is the subset of pgxpool.Pool the store needs; pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Store persists orders into three status-partitioned tables keyed by
// (partition_key = processing date, row_key = order id).
type Store struct {
	db     DB
	logger *slog.Logger
	now    func() time.Time
}

const (
	tablePaymentPending  = "orders_payment_pending"
	tablePaymentApproved = "orders_payment_approved"
	tableCanceled        = "orders_canceled"
)

// New connects and creates the status tables if absent.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	store := &Store{db: pool, logger: logger, now: time.Now}
	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *Store) initSchema(ctx context.Context) error {
	for _, table := range []string{tablePaymentPending, tablePaymentApproved, tableCanceled} {
		stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            partition_key TEXT NOT NULL,
            row_key TEXT NOT NULL,
            account_name TEXT NOT NULL,
            origin TEXT NOT NULL DEFAULT '',
            affiliate_id TEXT NOT NULL DEFAULT '',
            sales_channel TEXT NOT NULL DEFAULT '',
            value TEXT NOT NULL DEFAULT '',
            creation_date TEXT NOT NULL DEFAULT '',
            last_change TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL,
            recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (partition_key, row_key)
        )`, table)
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func tableFor(status model.Status) (string, error) {
	switch status.Canonical() {
	case model.StatusWaitingSellerConfirmation:
		return tablePaymentPending, nil
	case model.StatusPaymentApproved:
		return tablePaymentApproved, nil
	case model.StatusCanceled:
		return tableCanceled, nil
	default:
		return "", fmt.Errorf("no table for status %q", status)
	}
}

// Insert writes one record into the table matching the order status.
// The partition key is the processing date, never the order's own
// creation date. A second insert for the same order on the same day
// hits the primary key and surfaces ErrDuplicateRecord; inserts on a
// later day land in a fresh partition and succeed.
func (s *Store) Insert(ctx context.Context, order *model.Order) error {
	table, err := tableFor(order.Status)
	if err != nil {
		return err
	}

	stmt := fmt.Sprintf(`INSERT INTO %s
        (partition_key, row_key, account_name, origin, affiliate_id, sales_channel, value, creation_date, last_change, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`, table)

	_, err = s.db.Exec(ctx, stmt,
		model.PartitionKey(s.now()),
		order.OrderID,
		order.AccountName,
		order.Origin,
		order.AffiliateID,
		order.SalesChannel,
		order.Value,
		order.CreationDate,
		order.LastChange,
		string(order.Status),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s/%s", domainErrors.ErrDuplicateRecord, table, order.OrderID)
		}
		return err
	}

	s.logger.Debug("order persisted", slog.String("table", table), slog.String("order", order.OrderID))
	return nil
}

// HealthCheck verifies database connectivity.
func (s *Store) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.Ping(ctx)
}
