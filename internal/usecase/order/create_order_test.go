package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/detailing-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/detailing-scheduler/internal/domain/order"
	"github.com/BruksfildServices01/detailing-scheduler/internal/httperr"
	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
)

func TestCreateOrderAggregatesServices(t *testing.T) {
	f := newFixture(t)

	o, err := f.create.Execute(context.Background(), adminInput("2025-10-20T10:00:00Z", "wash", "wax"))
	require.NoError(t, err)

	assert.Equal(t, 75, o.TotalDuration)
	assert.True(t, decimal.NewFromInt(1250).Equal(o.TotalPrice))
	assert.Equal(t, "2025-10-20T10:00:00Z", o.StartTime)
	assert.Equal(t, "2025-10-20T11:15:00Z", o.EndTime)
	assert.Equal(t, string(domain.StatusScheduled), o.Status)
	assert.Equal(t, []string{"wash", "wax"}, []string(o.ServiceIDs))

	assert.Len(t, f.store.Orders(), 1)
	assert.Equal(t, 1, f.metrics.created["admin"])
	assert.Equal(t, []string{audit.ActionOrderCreated}, f.auditor.actions())
}

func TestCreateOrderNormalizesStartTime(t *testing.T) {
	f := newFixture(t)

	o, err := f.create.Execute(context.Background(), adminInput("2025-10-20T13:00:00+03:00", "wash"))
	require.NoError(t, err)
	assert.Equal(t, "2025-10-20T10:00:00Z", o.StartTime)

	o, err = f.create.Execute(context.Background(), adminInput("2025-10-20T12:00:00", "wash"))
	require.NoError(t, err)
	assert.Equal(t, "2025-10-20T12:00:00Z", o.StartTime)
}

func TestCreateOrderRejectsOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.create.Execute(ctx, adminInput("2025-10-20T10:00:00Z", "polish"))
	require.NoError(t, err)

	in := adminInput("2025-10-20T10:30:00Z", "wax")
	in.ClientID, in.CarID = "c2", "car2"

	_, err = f.create.Execute(ctx, in)
	require.Error(t, err)
	assert.Equal(t, httperr.KindConflict, httperr.KindOf(err))
	assert.Contains(t, err.Error(), "Ivan Petrov")

	assert.Len(t, f.store.Orders(), 1)
	assert.Equal(t, 1, f.metrics.conflicts["admin"])
	assert.Contains(t, f.auditor.actions(), audit.ActionOrderConflict)
}

func TestCreateOrderAcceptsTouchingIntervals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.create.Execute(ctx, adminInput("2025-10-20T10:00:00Z", "wash"))
	require.NoError(t, err)

	_, err = f.create.Execute(ctx, adminInput("2025-10-20T10:30:00Z", "wash"))
	require.NoError(t, err)

	_, err = f.create.Execute(ctx, adminInput("2025-10-20T09:30:00Z", "wash"))
	require.NoError(t, err)

	assert.Len(t, f.store.Orders(), 3)
}

func TestCreateOrderConflictFallbackName(t *testing.T) {
	f := newFixture(t)
	f.store.AddOrder(models.Order{
		ID:        "orphan",
		ClientID:  "gone",
		CarID:     "car1",
		StartTime: "2025-10-20T10:00:00Z",
		EndTime:   "2025-10-20T11:00:00Z",
		Status:    string(domain.StatusScheduled),
	})

	_, err := f.create.Execute(context.Background(), adminInput("2025-10-20T10:15:00Z", "wash"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ConflictFallbackName)
}

func TestCreateOrderIgnoresCancelledOrders(t *testing.T) {
	f := newFixture(t)
	f.store.AddOrder(models.Order{
		ClientID:  "c2",
		CarID:     "car2",
		StartTime: "2025-10-20T10:00:00Z",
		EndTime:   "2025-10-20T11:00:00Z",
		Status:    string(domain.StatusCancelled),
	})

	_, err := f.create.Execute(context.Background(), adminInput("2025-10-20T10:00:00Z", "wash"))
	assert.NoError(t, err)
}

func TestCreateOrderUnknownServiceWritesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.create.Execute(context.Background(), adminInput("2025-10-20T10:00:00Z", "wash", "bogus"))

	assert.True(t, httperr.IsBusiness(err, domain.CodeServicesNotFound))
	assert.Equal(t, httperr.KindValidation, httperr.KindOf(err))
	assert.Empty(t, f.store.Orders())
	assert.Empty(t, f.auditor.actions())
}

func TestCreateOrderValidation(t *testing.T) {
	cases := []struct {
		name string
		in   CreateOrderInput
		code string
	}{
		{"no services", adminInput("2025-10-20T10:00:00Z"), domain.CodeMissingFields},
		{"no start", adminInput("", "wash"), domain.CodeMissingFields},
		{"bad start", adminInput("next monday", "wash"), domain.CodeInvalidStartTime},
		{"zero duration", adminInput("2025-10-20T10:00:00Z", "free"), domain.CodeInvalidDuration},
		{"duplicate service", adminInput("2025-10-20T10:00:00Z", "wash", "wash"), domain.CodeServicesNotFound},
		{"unknown client", func() CreateOrderInput {
			in := adminInput("2025-10-20T10:00:00Z", "wash")
			in.ClientID = "nobody"
			return in
		}(), domain.CodeClientNotFound},
		{"unknown car", func() CreateOrderInput {
			in := adminInput("2025-10-20T10:00:00Z", "wash")
			in.CarID = "nothing"
			return in
		}(), domain.CodeCarNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.create.Execute(context.Background(), tc.in)
			assert.True(t, httperr.IsBusiness(err, tc.code), "got %v", err)
			assert.Equal(t, httperr.KindValidation, httperr.KindOf(err))
			assert.Empty(t, f.store.Orders())
		})
	}
}

func TestCreateOrderKeepsEmployeeForAdmin(t *testing.T) {
	f := newFixture(t)
	emp := "emp-1"

	in := adminInput("2025-10-20T10:00:00Z", "wash")
	in.EmployeeID = &emp

	o, err := f.create.Execute(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, o.EmployeeID)
	assert.Equal(t, "emp-1", *o.EmployeeID)
}

func TestCreateOrderBlankEmployeeIsUnassigned(t *testing.T) {
	f := newFixture(t)
	blank := "  "

	in := adminInput("2025-10-20T10:00:00Z", "wash")
	in.EmployeeID = &blank

	o, err := f.create.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, o.EmployeeID)
	assert.Nil(t, f.store.Orders()[0].EmployeeID)
}

func TestCreateOrderRejectsOversizedDuration(t *testing.T) {
	f := newFixture(t)
	f.store.AddService(models.Service{ID: "marathon", Name: "Marathon", DurationMin: 200000000, Price: decimal.NewFromInt(1)})
	f.store.AddService(models.Service{ID: "long", Name: "Long", DurationMin: 1000, Price: decimal.NewFromInt(1)})
	f.store.AddService(models.Service{ID: "longer", Name: "Longer", DurationMin: 1000, Price: decimal.NewFromInt(1)})

	for _, ids := range [][]string{{"marathon"}, {"long", "longer"}} {
		_, err := f.create.Execute(context.Background(), adminInput("2025-10-20T10:00:00Z", ids...))
		assert.True(t, httperr.IsBusiness(err, domain.CodeInvalidDuration), "%v: %v", ids, err)
	}

	assert.Empty(t, f.store.Orders())
}

func TestCreateOrderConcurrentOverlapsSettleToOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := time.Date(2025, 10, 20, 10, i, 0, 0, time.UTC).Format(time.RFC3339)
			if _, err := f.create.Execute(ctx, adminInput(start, "polish")); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Len(t, f.store.Orders(), 1)
}
