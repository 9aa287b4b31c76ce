package dto

import "github.com/shopspring/decimal"

type OrderListDTO struct {
	ID            string          `json:"_id"`
	StartTime     string          `json:"start_time"`
	EndTime       string          `json:"end_time"`
	Status        string          `json:"status"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	TotalDuration int             `json:"total_duration"`
	EmployeeID    *string         `json:"employee_id"`
	ClientID      string          `json:"client_id"`
	ClientName    string          `json:"client_name"`
	ClientPhone   string          `json:"client_phone"`
	CarID         string          `json:"car_id"`
	CarName       string          `json:"car_name"`
	LicensePlate  string          `json:"license_plate"`
	ServiceIDs    []string        `json:"service_ids"`
	ServiceNames  []string        `json:"service_names"`
}
