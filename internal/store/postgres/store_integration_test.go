package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"quote-to-cash/internal/core"
	"quote-to-cash/internal/db"
	"quote-to-cash/internal/store/postgres"
	"quote-to-cash/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestDB(t *testing.T) (*pgxpool.Pool, *postgres.Store) {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	// Integration tests wipe the q2c_* tables, so they only run against a dedicated database.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping postgres integration test")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ms, err := db.LoadMigrations(migrations.FS)
	require.NoError(t, err)
	_, err = db.Migrate(ctx, pool, ms, zap.NewNop())
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `TRUNCATE TABLE q2c_invoices, q2c_orders, q2c_quotes, q2c_products, q2c_customers, q2c_document_sequences`)
	require.NoError(t, err)

	return pool, postgres.New(pool)
}

func TestStore_QuoteToCashCycle(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()
	clock := core.NewFixedClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	settings := core.DefaultSettings()

	catalog := core.NewCatalogService(store, clock)
	quotes := core.NewQuoteService(store, settings, clock)
	orders := core.NewOrderService(store, settings.Policy, clock)
	invoices := core.NewInvoiceService(store, settings, clock)

	customer, err := catalog.CreateCustomer(ctx, core.CustomerInput{
		Name: "Sarah Johnson", Email: "sarah@techcorp.com", Company: "TechCorp Solutions",
	})
	require.NoError(t, err)
	product, err := catalog.CreateProduct(ctx, core.ProductInput{
		Name: "Enterprise Software License", Price: decimal.NewFromInt(5000), Category: "Software", SKU: "ESL-001",
	})
	require.NoError(t, err)

	q, err := quotes.CreateQuote(ctx, core.QuoteInput{
		CustomerID: customer.ID,
		Lines:      []core.LineInput{{ProductID: product.ID, Quantity: 2, Discount: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Q-2024-001", q.QuoteNumber)

	loaded, err := store.GetQuote(ctx, q.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Total.Equal(decimal.NewFromInt(9900)), "total %s", loaded.Total)
	assert.Equal(t, "TechCorp Solutions", loaded.Customer.Company)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "ESL-001", loaded.Items[0].Product.SKU)

	_, err = quotes.TransitionQuote(ctx, q.ID, core.QuoteSent)
	require.NoError(t, err)
	_, err = quotes.TransitionQuote(ctx, q.ID, core.QuoteApproved)
	require.NoError(t, err)

	o, err := orders.CreateOrderFromQuote(ctx, q.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "ORD-2024-001", o.OrderNumber)
	_, err = orders.TransitionOrder(ctx, o.ID, core.OrderConfirmed)
	require.NoError(t, err)

	inv, err := invoices.CreateInvoiceFromOrder(ctx, o.ID, nil, "")
	require.NoError(t, err)
	_, err = invoices.TransitionInvoice(ctx, inv.ID, core.InvoiceSent)
	require.NoError(t, err)
	clock.Advance(time.Hour)
	paid, err := invoices.TransitionInvoice(ctx, inv.ID, core.InvoicePaid)
	require.NoError(t, err)
	require.NotNil(t, paid.PaidAt)

	reloaded, err := store.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.PaidAt)
	assert.True(t, reloaded.PaidAt.Equal(clock.Now()))

	listed, err := store.ListInvoices(ctx, core.InvoicePaid)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestStore_NotFound(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()

	_, err := store.GetQuote(ctx, "missing")
	assert.True(t, errors.Is(err, core.ErrNotFound))

	err = store.DeleteOrder(ctx, "missing")
	assert.True(t, errors.Is(err, core.ErrNotFound))

	_, err = store.UpdateInvoice(ctx, "missing", func(*core.Invoice) error { return nil })
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestStore_NextSequenceConcurrent(t *testing.T) {
	_, store := setupTestDB(t)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	got := make(chan int64, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := store.NextSequence(ctx, core.KindInvoice, 2024)
			if assert.NoError(t, err) {
				got <- n
			}
		}()
	}
	wg.Wait()
	close(got)

	seen := make(map[int64]bool)
	for n := range got {
		assert.False(t, seen[n], "duplicate sequence %d", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)
	for i := int64(1); i <= workers; i++ {
		assert.True(t, seen[i], "missing sequence %d", i)
	}
}
