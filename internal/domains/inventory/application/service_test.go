package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	auditmemory "github.com/Apurer/reseller-ops-api/internal/domains/audit/adapters/memory"
	auditapp "github.com/Apurer/reseller-ops-api/internal/domains/audit/application"
	auditdomain "github.com/Apurer/reseller-ops-api/internal/domains/audit/domain"
	auditports "github.com/Apurer/reseller-ops-api/internal/domains/audit/ports"
	inventorymemory "github.com/Apurer/reseller-ops-api/internal/domains/inventory/adapters/memory"
	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
	"github.com/Apurer/reseller-ops-api/internal/shared/actor"
)

var fixedNow = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

type fixture struct {
	repo    *inventorymemory.Repository
	auditDB *auditmemory.Repository
	events  *recordingPublisher
	svc     *Service
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	repo := inventorymemory.NewRepository()
	auditDB := auditmemory.NewRepository()
	events := &recordingPublisher{}
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithLocker(inventorymemory.NewProductLocker()),
		WithIdempotencyStore(inventorymemory.NewIdempotencyStore()),
		WithPublisher(events),
	}
	svc := NewService(repo, auditapp.NewService(auditDB), append(base, opts...)...)
	return &fixture{repo: repo, auditDB: auditDB, events: events, svc: svc}
}

func seedUnit(id int64, product, date string, status domain.Status) *domain.Unit {
	added, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return &domain.Unit{ID: id, Model: "M-" + product, Product: product, Status: status, DateAdded: added}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.events))
	for _, e := range p.events {
		names = append(names, e.EventName())
	}
	return names
}

func statusByID(t *testing.T, svc *Service) map[int64]domain.Status {
	t.Helper()
	units, err := svc.List(context.Background(), domain.Filter{})
	require.NoError(t, err)
	out := make(map[int64]domain.Status, len(units))
	for _, u := range units {
		out[u.ID] = u.Status
	}
	return out
}

func TestSell_WidgetExampleConsumesOldestFirst(t *testing.T) {
	f := newFixture(t)
	f.repo.Seed(
		seedUnit(1, "Widget", "2024-01-01", domain.StatusAvailable),
		seedUnit(2, "Widget", "2024-01-03", domain.StatusAvailable),
		seedUnit(3, "Widget", "2024-01-02", domain.StatusAvailable),
	)

	result, err := f.svc.Sell(context.Background(), ports.SellInput{Product: "Widget", Quantity: 2})
	require.NoError(t, err)
	require.Equal(t, 2, result.Sold)
	require.Equal(t, []int64{1, 3}, result.UnitIDs)

	statuses := statusByID(t, f.svc)
	require.Equal(t, domain.StatusSold, statuses[1])
	require.Equal(t, domain.StatusSold, statuses[3])
	require.Equal(t, domain.StatusAvailable, statuses[2])
}

func TestSell_TieBreaksOnIdentifier(t *testing.T) {
	f := newFixture(t)
	f.repo.Seed(
		seedUnit(9, "Widget", "2024-01-01", domain.StatusAvailable),
		seedUnit(4, "Widget", "2024-01-01", domain.StatusAvailable),
		seedUnit(7, "Widget", "2024-01-01", domain.StatusAvailable),
	)

	result, err := f.svc.Sell(context.Background(), ports.SellInput{Product: "Widget", Quantity: 2})
	require.NoError(t, err)
	require.Equal(t, []int64{4, 7}, result.UnitIDs)
}

func TestSell_SkipsUnavailableAndOtherProducts(t *testing.T) {
	f := newFixture(t)
	f.repo.Seed(
		seedUnit(1, "Widget", "2024-01-01", domain.StatusReserved),
		seedUnit(2, "Widget", "2024-01-02", domain.StatusSold),
		seedUnit(3, "Gadget", "2024-01-01", domain.StatusAvailable),
		seedUnit(4, "Widget", "2024-01-05", domain.StatusAvailable),
	)

	result, err := f.svc.Sell(context.Background(), ports.SellInput{Product: "Widget", Quantity: 1})
	require.NoError(t, err)
	require.Equal(t, []int64{4}, result.UnitIDs)

	units, err := f.svc.List(context.Background(), domain.Filter{Product: "Widget"})
	require.NoError(t, err)
	for _, u := range units {
		if u.ID == 4 {
			require.NotNil(t, u.SoldAt)
			require.Equal(t, fixedNow, *u.SoldAt)
		}
	}
}

func TestSell_InsufficientStockLeavesStoreUnchanged(t *testing.T) {
	f := newFixture(t)
	f.repo.Seed(
		seedUnit(1, "Widget", "2024-01-01", domain.StatusAvailable),
		seedUnit(2, "Widget", "2024-01-02", domain.StatusAvailable),
		seedUnit(3, "Widget", "2024-01-03", domain.StatusReserved),
	)
	before := statusByID(t, f.svc)

	_, err := f.svc.Sell(context.Background(), ports.SellInput{Product: "Widget", Quantity: 3})
	var shortage *domain.InsufficientStockError
	require.ErrorAs(t, err, &shortage)
	require.Equal(t, "Widget", shortage.Product)
	require.Equal(t, 2, shortage.Available)
	require.Equal(t, 3, shortage.Requested)

	require.Equal(t, before, statusByID(t, f.svc))
	require.Zero(t, f.auditDB.Len())
	require.Empty(t, f.events.names())
}

func TestSell_ValidatesInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Sell(context.Background(), ports.SellInput{Product: "  ", Quantity: 1})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrEmptyProduct)

	_, err = f.svc.Sell(context.Background(), ports.SellInput{Product: "Widget", Quantity: 0})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestSell_AuditFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.repo.Seed(seedUnit(1, "Widget", "2024-01-01", domain.StatusAvailable))
	sinkErr := errors.New("audit sink down")
	f.auditDB.FailWith(sinkErr)

	_, err := f.svc.Sell(context.Background(), ports.SellInput{Product: "Widget", Quantity: 1})
	require.ErrorIs(t, err, sinkErr)
	require.Equal(t, domain.StatusAvailable, statusByID(t, f.svc)[1])
	require.Empty(t, f.events.names())

	f.auditDB.FailWith(nil)
	_, err = f.svc.Sell(context.Background(), ports.SellInput{Product: "Widget", Quantity: 1})
	require.NoError(t, err)
	require.Equal(t, 1, f.auditDB.Len())
}

func TestSell_RecordsAuditAndPublishes(t *testing.T) {
	f := newFixture(t)
	f.repo.Seed(seedUnit(1, "Widget", "2024-01-01", domain.StatusAvailable))
	ctx := actor.WithActor(context.Background(), actor.Actor{ID: "ops@company.com", Address: "10.0.0.1"})

	_, err := f.svc.Sell(ctx, ports.SellInput{Product: "Widget", Quantity: 1})
	require.NoError(t, err)

	entries, err := f.auditDB.List(context.Background(), auditports.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, auditdomain.ActionInventorySold, entries[0].Action)
	require.Equal(t, "Widget", entries[0].Target)
	require.Equal(t, "ops@company.com", entries[0].Actor)
	require.Equal(t, []string{"inventory.units.sold"}, f.events.names())
}

func TestSell_PublishFailureDoesNotFailSale(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")
	f.repo.Seed(seedUnit(1, "Widget", "2024-01-01", domain.StatusAvailable))

	result, err := f.svc.Sell(context.Background(), ports.SellInput{Product: "Widget", Quantity: 1})
	require.NoError(t, err)
	require.Equal(t, 1, result.Sold)
}

func TestSell_IdempotentReplay(t *testing.T) {
	f := newFixture(t)
	f.repo.Seed(
		seedUnit(1, "Widget", "2024-01-01", domain.StatusAvailable),
		seedUnit(2, "Widget", "2024-01-02", domain.StatusAvailable),
	)
	input := ports.SellInput{Product: "Widget", Quantity: 1, IdempotencyKey: "sale-1"}

	first, err := f.svc.Sell(context.Background(), input)
	require.NoError(t, err)
	require.False(t, first.Replayed)

	replay, err := f.svc.Sell(context.Background(), input)
	require.NoError(t, err)
	require.True(t, replay.Replayed)
	require.Equal(t, first.UnitIDs, replay.UnitIDs)
	require.Equal(t, domain.StatusAvailable, statusByID(t, f.svc)[2])
	require.Equal(t, 1, f.auditDB.Len())

	_, err = f.svc.Sell(context.Background(), ports.SellInput{Product: "Widget", Quantity: 2, IdempotencyKey: "sale-1"})
	require.ErrorIs(t, err, ErrConflict)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
}

// slowIdempotencyStore widens the window between the key lookup and the save.
type slowIdempotencyStore struct {
	ports.IdempotencyStore
	delay time.Duration
}

func (s slowIdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	record, err := s.IdempotencyStore.Get(ctx, key)
	time.Sleep(s.delay)
	return record, err
}

func TestSell_SharedKeyAcrossProductsAuditsOnlyCommittedSale(t *testing.T) {
	f := newFixture(t, WithIdempotencyStore(slowIdempotencyStore{
		IdempotencyStore: inventorymemory.NewIdempotencyStore(),
		delay:            50 * time.Millisecond,
	}))
	f.repo.Seed(
		seedUnit(1, "Widget", "2024-01-01", domain.StatusAvailable),
		seedUnit(2, "Gadget", "2024-01-01", domain.StatusAvailable),
	)

	start := make(chan struct{})
	results := make(chan error, 2)
	var wg sync.WaitGroup
	for _, product := range []string{"Widget", "Gadget"} {
		wg.Add(1)
		go func(product string) {
			defer wg.Done()
			<-start
			_, err := f.svc.Sell(context.Background(), ports.SellInput{Product: product, Quantity: 1, IdempotencyKey: "shared"})
			results <- err
		}(product)
	}
	close(start)
	wg.Wait()
	close(results)

	var succeeded, conflicts int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ports.ErrIdempotencyConflict):
			require.ErrorIs(t, err, ErrConflict)
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, conflicts)

	sold := 0
	for _, status := range statusByID(t, f.svc) {
		if status == domain.StatusSold {
			sold++
		}
	}
	require.Equal(t, 1, sold)
	require.Equal(t, 1, f.auditDB.Len())
}

func TestSell_ConcurrentSameProductNeverOversells(t *testing.T) {
	f := newFixture(t)
	for i := int64(1); i <= 5; i++ {
		f.repo.Seed(seedUnit(i, "Widget", "2024-01-01", domain.StatusAvailable))
	}

	const callers = 2
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Sell(context.Background(), ports.SellInput{Product: "Widget", Quantity: 3})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		var shortage *domain.InsufficientStockError
		switch {
		case err == nil:
			succeeded++
		case errors.As(err, &shortage):
			rejected++
			require.Equal(t, 2, shortage.Available)
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, rejected)

	sold := 0
	for _, status := range statusByID(t, f.svc) {
		if status == domain.StatusSold {
			sold++
		}
	}
	require.Equal(t, 3, sold)
}

func TestList_FiltersAndIsRepeatable(t *testing.T) {
	f := newFixture(t)
	f.repo.Seed(
		&domain.Unit{ID: 1, Model: "A3101", Product: "iPhone 15 Pro", IMEI: "356789012345678", SerialNumber: "F2LXK1ABC", Color: "Natural Titanium", Batch: "B-001", Status: domain.StatusAvailable, DateAdded: fixedNow.Add(-48 * time.Hour)},
		&domain.Unit{ID: 2, Model: "SM-S921", Product: "Galaxy S24", IMEI: "351234567890123", SerialNumber: "R58X22", Color: "Onyx Black", Batch: "B-002", Status: domain.StatusAvailable, DateAdded: fixedNow.Add(-72 * time.Hour)},
		&domain.Unit{ID: 3, Model: "A3101", Product: "iPhone 15 Pro", IMEI: "356789012349999", SerialNumber: "F2LXK1XYZ", Color: "Blue Titanium", Batch: "B-001", Status: domain.StatusSold, DateAdded: fixedNow.Add(-24 * time.Hour)},
	)

	all, err := f.svc.List(context.Background(), domain.Filter{Model: "all", Product: "all"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, int64(2), all[0].ID)

	again, err := f.svc.List(context.Background(), domain.Filter{})
	require.NoError(t, err)
	require.Equal(t, all, again)

	byIMEI, err := f.svc.List(context.Background(), domain.Filter{IMEI: "3567890123"})
	require.NoError(t, err)
	require.Len(t, byIMEI, 2)

	conj, err := f.svc.List(context.Background(), domain.Filter{Model: "A3101", SerialNumber: "xyz"})
	require.NoError(t, err)
	require.Len(t, conj, 1)
	require.Equal(t, int64(3), conj[0].ID)

	none, err := f.svc.List(context.Background(), domain.Filter{Color: "natural titanium"})
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestUniqueCategoriesAndSummary(t *testing.T) {
	f := newFixture(t)
	soldToday := fixedNow.Add(-time.Hour)
	soldYesterday := fixedNow.Add(-30 * time.Hour)
	f.repo.Seed(
		&domain.Unit{ID: 1, Model: "B", Product: "P2", SKU: "S1", Color: "Red", Batch: "X", Status: domain.StatusAvailable, DateAdded: fixedNow},
		&domain.Unit{ID: 2, Model: "A", Product: "P1", SKU: "S1", Color: "Blue", Batch: "X", Status: domain.StatusReserved, DateAdded: fixedNow},
		&domain.Unit{ID: 3, Model: "A", Product: "P1", SKU: "S2", Color: "Blue", Status: domain.StatusSold, SoldAt: &soldToday, DateAdded: fixedNow},
		&domain.Unit{ID: 4, Model: "A", Product: "P1", SKU: "S2", Color: "Blue", Status: domain.StatusSold, SoldAt: &soldYesterday, DateAdded: fixedNow},
	)

	categories, err := f.svc.UniqueCategories(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, categories.Models)
	require.Equal(t, []string{"P1", "P2"}, categories.Products)
	require.Equal(t, []string{"S1", "S2"}, categories.SKUs)
	require.Equal(t, []string{"Blue", "Red"}, categories.Colors)
	require.Equal(t, []string{"X"}, categories.Batches)

	summary, err := f.svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.Summary{Total: 4, Available: 1, Reserved: 1, SoldToday: 1}, *summary)
}

func TestAddUnit_AssignsNextIDAndNormalizesDate(t *testing.T) {
	f := newFixture(t)
	f.repo.Seed(seedUnit(41, "Widget", "2024-01-01", domain.StatusAvailable))

	unit, err := f.svc.AddUnit(context.Background(), ports.AddUnitInput{
		Model:     "A3101",
		Product:   "iPhone 15 Pro",
		IMEI:      "356789012345678",
		Status:    "available",
		DateAdded: "2024-02-29",
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), unit.ID)
	require.Equal(t, domain.StatusAvailable, unit.Status)
	require.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), unit.DateAdded)
	require.Equal(t, 1, f.auditDB.Len())
	require.Equal(t, []string{"inventory.unit.added"}, f.events.names())

	withOffset, err := f.svc.AddUnit(context.Background(), ports.AddUnitInput{
		Model: "A3101", Product: "iPhone 15 Pro", DateAdded: "2024-03-01T10:00:00-06:00",
	})
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC), withOffset.DateAdded)

	blank, err := f.svc.AddUnit(context.Background(), ports.AddUnitInput{Model: "A3101", Product: "iPhone 15 Pro"})
	require.NoError(t, err)
	require.Equal(t, fixedNow, blank.DateAdded)
}

func TestAddUnit_Rejections(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AddUnit(context.Background(), ports.AddUnitInput{Product: "iPhone 15 Pro"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.AddUnit(context.Background(), ports.AddUnitInput{Model: "A", Product: "P", Status: "Lost"})
	require.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.svc.AddUnit(context.Background(), ports.AddUnitInput{Model: "A", Product: "P", DateAdded: "10/03/2024"})
	require.ErrorIs(t, err, domain.ErrInvalidDate)

	_, err = f.svc.AddUnit(context.Background(), ports.AddUnitInput{Model: "A", Product: "P", IMEI: "111", SerialNumber: "S-1"})
	require.NoError(t, err)
	_, err = f.svc.AddUnit(context.Background(), ports.AddUnitInput{Model: "A", Product: "P", IMEI: "111"})
	require.ErrorIs(t, err, ErrConflict)
	require.ErrorIs(t, err, domain.ErrDuplicateIMEI)
	_, err = f.svc.AddUnit(context.Background(), ports.AddUnitInput{Model: "A", Product: "P", SerialNumber: "S-1"})
	require.ErrorIs(t, err, domain.ErrDuplicateSerial)
}

func TestAddUnit_AuditFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.auditDB.FailWith(errors.New("audit sink down"))

	_, err := f.svc.AddUnit(context.Background(), ports.AddUnitInput{Model: "A", Product: "P"})
	require.Error(t, err)
	units, err := f.svc.List(context.Background(), domain.Filter{})
	require.NoError(t, err)
	require.Empty(t, units)
}

func TestImport_AddsAllRowsAtomically(t *testing.T) {
	f := newFixture(t)
	doc := "Model,Product,IMEI,SKU,Serial Number,Color,Location,Batch,Status,Date Added\n" +
		"A3101,iPhone 15 Pro,356789012345678,IP15P-256,F2LXK1,Natural,Shelf A,B-001,Available,2024-01-05\n" +
		"\n" +
		"SM-S921,Galaxy S24,351234567890123,GS24-128,R58X22,Black,Shelf B,B-002,,2024-01-06T08:00:00Z\n"

	result, err := f.svc.Import(context.Background(), ports.ImportInput{Source: "january.csv", Reader: strings.NewReader(doc)})
	require.NoError(t, err)
	require.Equal(t, 2, result.Imported)
	require.Equal(t, []int64{1, 2}, result.UnitIDs)

	entries, err := f.auditDB.List(context.Background(), auditports.Filter{Action: auditdomain.ActionCSVImport})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "january.csv", entries[0].Target)
}

func TestImport_RejectsWholeBatchOnBadRow(t *testing.T) {
	f := newFixture(t)
	doc := "model,product,status\nA,P,Available\nB,,Available\n"

	_, err := f.svc.Import(context.Background(), ports.ImportInput{Reader: strings.NewReader(doc)})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Contains(t, err.Error(), "row 3")
	units, err := f.svc.List(context.Background(), domain.Filter{})
	require.NoError(t, err)
	require.Empty(t, units)
}

func TestImport_EmptyAndMissingColumns(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Import(context.Background(), ports.ImportInput{Reader: strings.NewReader("")})
	require.ErrorIs(t, err, ErrEmptyImport)

	_, err = f.svc.Import(context.Background(), ports.ImportInput{Reader: strings.NewReader("model,color\nA,Red\n")})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestExport_CSVAndXLSX(t *testing.T) {
	f := newFixture(t)
	f.repo.Seed(
		seedUnit(1, "Widget", "2024-01-01", domain.StatusAvailable),
		seedUnit(2, "Gadget", "2024-01-02", domain.StatusAvailable),
	)

	csvOut, err := f.svc.Export(context.Background(), ports.ExportInput{Filter: domain.Filter{Product: "Widget"}})
	require.NoError(t, err)
	require.Equal(t, "text/csv", csvOut.ContentType)
	records, err := csv.NewReader(bytes.NewReader(csvOut.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "id", records[0][0])
	require.Equal(t, "Widget", records[1][2])

	xlsxOut, err := f.svc.Export(context.Background(), ports.ExportInput{Format: ports.ExportXLSX})
	require.NoError(t, err)
	book, err := excelize.OpenReader(bytes.NewReader(xlsxOut.Data))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Inventory")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "Gadget", rows[2][2])

	_, err = f.svc.Export(context.Background(), ports.ExportInput{Format: "pdf"})
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFingerprintSale_Deterministic(t *testing.T) {
	a, err := FingerprintSale("Widget", 2)
	require.NoError(t, err)
	b, err := FingerprintSale("Widget", 2)
	require.NoError(t, err)
	c, err := FingerprintSale("Widget", 3)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}
