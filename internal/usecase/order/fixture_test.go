package order

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/detailing-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/detailing-scheduler/internal/domain/order"
	"github.com/BruksfildServices01/detailing-scheduler/internal/infra/cache"
	"github.com/BruksfildServices01/detailing-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
)

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (a *recordingAuditor) Dispatch(ev audit.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
}

func (a *recordingAuditor) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.events))
	for _, ev := range a.events {
		out = append(out, ev.Action)
	}
	return out
}

type countingMetrics struct {
	mu        sync.Mutex
	created   map[string]int
	conflicts map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{created: map[string]int{}, conflicts: map[string]int{}}
}

func (m *countingMetrics) OrderCreated(origin string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created[origin]++
}

func (m *countingMetrics) OrderConflict(origin string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts[origin]++
}

type fixture struct {
	store   *memory.Store
	auditor *recordingAuditor
	metrics *countingMetrics

	create *CreateOrder
	public *CreatePublicBooking
	update *UpdateOrder
	delete *DeleteOrder
	slots  *GetAvailableSlots
	list   *ListOrders
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	store.AddService(models.Service{ID: "wash", Name: "Wash", DurationMin: 30, Price: decimal.NewFromInt(500), Active: true})
	store.AddService(models.Service{ID: "wax", Name: "Wax", DurationMin: 45, Price: decimal.NewFromInt(750), Active: true})
	store.AddService(models.Service{ID: "polish", Name: "Polish", DurationMin: 60, Price: decimal.NewFromInt(2000), Active: true})
	store.AddService(models.Service{ID: "free", Name: "Consultation", DurationMin: 0, Price: decimal.Zero, Active: true})
	store.AddClient(models.Client{ID: "c1", FullName: "Ivan Petrov", Phone: "+79000000001"})
	store.AddClient(models.Client{ID: "c2", FullName: "Anna Smirnova", Phone: "+79000000002"})
	store.AddCar(models.Car{ID: "car1", ClientID: "c1", Make: "Toyota", Model: "Camry", LicensePlate: "A123BC"})
	store.AddCar(models.Car{ID: "car2", ClientID: "c2", Make: "BMW", Model: "X5", LicensePlate: "B456CD"})

	log := zap.NewNop().Sugar()
	auditor := &recordingAuditor{}
	metrics := newCountingMetrics()
	repos := store.Repositories()

	create := NewCreateOrder(repos, store, auditor, metrics, log)

	return &fixture{
		store:   store,
		auditor: auditor,
		metrics: metrics,
		create:  create,
		public:  NewCreatePublicBooking(create, cache.NewMemoryIdempotencyStore(), cache.DefaultTTL, log),
		update:  NewUpdateOrder(repos, store, auditor, metrics, log),
		delete:  NewDeleteOrder(store, auditor, log),
		slots:   NewGetAvailableSlots(store, domain.DefaultBusinessHours),
		list:    NewListOrders(store, repos.Services),
	}
}

func adminInput(start string, services ...string) CreateOrderInput {
	return CreateOrderInput{
		Origin:     domain.OriginAdmin,
		ClientID:   "c1",
		CarID:      "car1",
		ServiceIDs: services,
		StartTime:  start,
	}
}

func publicInput(phone, start string) PublicBookingInput {
	return PublicBookingInput{
		ClientName:  "Oleg",
		ClientPhone: phone,
		CarMake:     "Lada",
		CarModel:    "Vesta",
		ServiceID:   "wash",
		StartTime:   start,
	}
}
