package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	domain "github.com/BruksfildServices01/detailing-scheduler/internal/domain/order"
	"github.com/BruksfildServices01/detailing-scheduler/internal/dto"
	"github.com/BruksfildServices01/detailing-scheduler/internal/httperr"
	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
	"github.com/BruksfildServices01/detailing-scheduler/internal/timezone"
)

// ListOrdersInput bounds are YYYY-MM-DD; both are optional and To is inclusive.
type ListOrdersInput struct {
	From string
	To   string
}

type ListOrders struct {
	orders   domain.OrderRepository
	services domain.ServiceRepository
}

func NewListOrders(orders domain.OrderRepository, services domain.ServiceRepository) *ListOrders {
	return &ListOrders{orders: orders, services: services}
}

func (uc *ListOrders) Execute(ctx context.Context, in ListOrdersInput) ([]dto.OrderListDTO, error) {
	from, err := optionalDate(in.From)
	if err != nil {
		return nil, err
	}
	to, err := optionalDate(in.To)
	if err != nil {
		return nil, err
	}
	if to != nil {
		next := to.AddDate(0, 0, 1)
		to = &next
	}

	orders, err := uc.orders.ListForPeriod(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	names, err := uc.serviceNames(ctx, orders)
	if err != nil {
		return nil, err
	}

	out := make([]dto.OrderListDTO, 0, len(orders))
	for _, o := range orders {
		item := dto.OrderListDTO{
			ID:            o.ID,
			StartTime:     o.StartTime,
			EndTime:       o.EndTime,
			Status:        o.Status,
			TotalPrice:    o.TotalPrice,
			TotalDuration: o.TotalDuration,
			EmployeeID:    o.EmployeeID,
			ClientID:      o.ClientID,
			CarID:         o.CarID,
			ServiceIDs:    []string(o.ServiceIDs),
			ServiceNames:  make([]string, 0, len(o.ServiceIDs)),
		}
		if o.Client != nil {
			item.ClientName = o.Client.FullName
			item.ClientPhone = o.Client.Phone
		}
		if o.Car != nil {
			item.CarName = strings.TrimSpace(o.Car.Make + " " + o.Car.Model)
			item.LicensePlate = o.Car.LicensePlate
		}
		for _, id := range o.ServiceIDs {
			if n, ok := names[id]; ok {
				item.ServiceNames = append(item.ServiceNames, n)
			}
		}
		out = append(out, item)
	}

	return out, nil
}

func (uc *ListOrders) serviceNames(ctx context.Context, orders []models.Order) (map[string]string, error) {
	seen := map[string]struct{}{}
	var ids []string
	for _, o := range orders {
		for _, id := range o.ServiceIDs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	services, err := uc.services.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	for _, s := range services {
		names[s.ID] = s.Name
	}
	return names, nil
}

func optionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := timezone.ParseDate(s)
	if err != nil {
		return nil, httperr.ErrValidation(domain.CodeInvalidDate, "Dates must be YYYY-MM-DD.")
	}
	return &d, nil
}
