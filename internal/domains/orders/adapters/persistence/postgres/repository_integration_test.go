//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/reseller-ops-api/internal/domains/orders/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/orders/ports"
	"github.com/Apurer/reseller-ops-api/internal/platform/migrations"
)

var threshold = decimal.NewFromInt(200000)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("reseller_ops_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func newOrder(t *testing.T, id string, amount int64, orderedAt time.Time) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(domain.Attributes{
		ID:               id,
		Customer:         "Corporativo DEF",
		Amount:           decimal.NewFromInt(amount),
		PaymentMethod:    "SPEI",
		PaymentReference: "SPEI-" + id,
		OrderedAt:        orderedAt,
		Items:            []string{"10x iPhone 15 Pro", "5x iPad Pro"},
	}, threshold)
	require.NoError(t, err)
	return order
}

func TestRepository_CreateAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	order := newOrder(t, "ORD-1", 234600, time.Date(2024, 1, 14, 16, 45, 0, 0, time.UTC))
	_, err := repo.Create(ctx, order, nil)
	require.NoError(t, err)

	fetched, err := repo.GetByID(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusValidationRequired, fetched.Entity.Status)
	assert.True(t, order.Amount.Equal(fetched.Entity.Amount))
	assert.Equal(t, order.Items, fetched.Entity.Items)
	assert.Nil(t, fetched.Entity.Decision)

	_, err = repo.Create(ctx, order, nil)
	assert.ErrorIs(t, err, domain.ErrDuplicateOrder)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_UpdatePersistsDecision(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, newOrder(t, "ORD-1", 1000, time.Now()), nil)
	require.NoError(t, err)

	decidedAt := time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)
	updated, err := repo.Update(ctx, "ORD-1", func(o *domain.Order) error {
		return o.Approve("ok", "BBVA-1", "admin", decidedAt)
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, updated.Entity.Status)

	fetched, err := repo.GetByID(ctx, "ORD-1")
	require.NoError(t, err)
	require.NotNil(t, fetched.Entity.Decision)
	assert.Equal(t, "BBVA-1", fetched.Entity.Decision.BankReference)
	assert.Equal(t, "admin", fetched.Entity.Decision.Actor)
	assert.True(t, decidedAt.Equal(fetched.Entity.Decision.DecidedAt))
}

func TestRepository_UpdateRollsBackOnHookFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, newOrder(t, "ORD-1", 1000, time.Now()), nil)
	require.NoError(t, err)

	hookErr := errors.New("audit down")
	_, err = repo.Update(ctx, "ORD-1", func(o *domain.Order) error {
		return o.Reject("", "", "admin", time.Now())
	}, func(context.Context, *domain.Order) error { return hookErr })
	require.ErrorIs(t, err, hookErr)

	fetched, err := repo.GetByID(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingValidation, fetched.Entity.Status)
}

func TestRepository_ListFilters(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	for i, amount := range []int64{234600, 127500, 89300} {
		id := []string{"ORD-3", "ORD-1", "ORD-2"}[i]
		_, err := repo.Create(ctx, newOrder(t, id, amount, base.Add(time.Duration(i)*time.Hour)), nil)
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, ports.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "ORD-2", all[0].Entity.ID)

	critical, err := repo.List(ctx, ports.Filter{Priority: domain.PriorityCritical})
	require.NoError(t, err)
	require.Len(t, critical, 1)
	assert.Equal(t, "ORD-3", critical[0].Entity.ID)

	pending, err := repo.List(ctx, ports.Filter{Status: domain.StatusPendingValidation})
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}
