// Package memory keeps the order aggregate in process memory. It is a test
// double: cmd/api always wires the gorm repositories, and only _test.go files
// construct a Store. It behaves like the gorm repositories, including rollback
// when a transaction function fails, but LockWindow is a no-op because
// transactions are already serialized.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/detailing-scheduler/internal/domain/order"
	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
	"github.com/BruksfildServices01/detailing-scheduler/internal/timezone"
)

type txKey struct{}

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	orders   map[string]models.Order
	services map[string]models.Service
	clients  map[string]models.Client
	cars     map[string]models.Car
}

func NewStore() *Store {
	return &Store{
		orders:   map[string]models.Order{},
		services: map[string]models.Service{},
		clients:  map[string]models.Client{},
		cars:     map[string]models.Car{},
	}
}

func (s *Store) Repositories() domain.Repositories {
	return domain.Repositories{
		Orders:   s,
		Services: (*serviceRepo)(s),
		Clients:  (*clientRepo)(s),
		Cars:     (*carRepo)(s),
	}
}

// --------------------------------------------------
// Seeding and inspection
// --------------------------------------------------

func (s *Store) AddService(svc models.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[svc.ID] = svc
}

func (s *Store) AddClient(c models.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ID] = c
}

func (s *Store) AddCar(c models.Car) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cars[c.ID] = c
}

func (s *Store) AddOrder(o models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	s.orders[o.ID] = o
}

func (s *Store) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	sortByStart(out)
	return out
}

func (s *Store) Clients() []models.Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	return out
}

func (s *Store) Cars() []models.Car {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Car, 0, len(s.cars))
	for _, c := range s.cars {
		out = append(out, c)
	}
	return out
}

// --------------------------------------------------
// Transactions
// --------------------------------------------------

// WithinTransaction serializes transaction functions and restores the previous
// state when fn fails.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	orders  map[string]models.Order
	clients map[string]models.Client
	cars    map[string]models.Car
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		orders:  cloneMap(s.orders),
		clients: cloneMap(s.clients),
		cars:    cloneMap(s.cars),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = snap.orders
	s.clients = snap.clients
	s.cars = snap.cars
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// --------------------------------------------------
// Orders
// --------------------------------------------------

func (s *Store) Create(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now()
	o.CreatedAt, o.UpdatedAt = now, now

	stored := *o
	stored.Client, stored.Car = nil, nil
	s.orders[o.ID] = stored
	return nil
}

func (s *Store) Update(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ID]; !ok {
		return domain.ErrRecordNotFound
	}
	o.UpdatedAt = time.Now()

	stored := *o
	stored.Client, stored.Car = nil, nil
	s.orders[o.ID] = stored
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return domain.ErrRecordNotFound
	}
	delete(s.orders, id)
	return nil
}

func (s *Store) GetByID(_ context.Context, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &o, nil
}

func (s *Store) FindOverlapping(_ context.Context, start, end time.Time, excludeID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lo, hi := timezone.FormatISO(start), timezone.FormatISO(end)

	var candidates []models.Order
	for _, o := range s.orders {
		if o.ID == excludeID || o.Status == string(domain.StatusCancelled) {
			continue
		}
		if o.StartTime < hi && o.EndTime > lo {
			candidates = append(candidates, o)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	sortByStart(candidates)
	found := candidates[0]
	if c, ok := s.clients[found.ClientID]; ok {
		found.Client = &c
	}
	return &found, nil
}

func (s *Store) ListActiveStartingBetween(_ context.Context, from, to time.Time) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lo, hi := timezone.FormatISO(from), timezone.FormatISO(to)

	var out []models.Order
	for _, o := range s.orders {
		if o.Status == string(domain.StatusCancelled) {
			continue
		}
		if o.StartTime >= lo && o.StartTime < hi {
			out = append(out, o)
		}
	}
	sortByStart(out)
	return out, nil
}

func (s *Store) ListForPeriod(_ context.Context, from, to *time.Time) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Order
	for _, o := range s.orders {
		if from != nil && o.StartTime < timezone.FormatISO(*from) {
			continue
		}
		if to != nil && o.StartTime >= timezone.FormatISO(*to) {
			continue
		}
		if c, ok := s.clients[o.ClientID]; ok {
			o.Client = &c
		}
		if car, ok := s.cars[o.CarID]; ok {
			o.Car = &car
		}
		out = append(out, o)
	}
	sortByStart(out)
	return out, nil
}

// LockWindow is a no-op; WithinTransaction already serializes writers.
func (s *Store) LockWindow(context.Context, time.Time, time.Time) error {
	return nil
}

func sortByStart(orders []models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].StartTime == orders[j].StartTime {
			return orders[i].ID < orders[j].ID
		}
		return orders[i].StartTime < orders[j].StartTime
	})
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

type serviceRepo Store

func (r *serviceRepo) GetByIDs(_ context.Context, ids []string) ([]models.Service, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Service
	seen := map[string]bool{}
	for _, id := range ids {
		if svc, ok := s.services[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, svc)
		}
	}
	return out, nil
}

type clientRepo Store

func (r *clientRepo) GetByID(_ context.Context, id string) (*models.Client, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &c, nil
}

func (r *clientRepo) GetOrCreateByPhone(_ context.Context, name, phone string) (*models.Client, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.clients {
		if c.Phone == phone {
			return &c, nil
		}
	}

	c := models.Client{ID: uuid.NewString(), FullName: name, Phone: phone}
	s.clients[c.ID] = c
	return &c, nil
}

type carRepo Store

func (r *carRepo) GetByID(_ context.Context, id string) (*models.Car, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cars[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &c, nil
}

func (r *carRepo) Create(_ context.Context, car *models.Car) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if car.ID == "" {
		car.ID = uuid.NewString()
	}
	s.cars[car.ID] = *car
	return nil
}

var (
	_ domain.OrderRepository   = (*Store)(nil)
	_ domain.TxManager         = (*Store)(nil)
	_ domain.ServiceRepository = (*serviceRepo)(nil)
	_ domain.ClientRepository  = (*clientRepo)(nil)
	_ domain.CarRepository     = (*carRepo)(nil)
)
