package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/detailing-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
	ucOrder "github.com/BruksfildServices01/detailing-scheduler/internal/usecase/order"
)

const IdempotencyHeader = "Idempotency-Key"

type PublicHandler struct {
	db      *gorm.DB
	slots   *ucOrder.GetAvailableSlots
	booking *ucOrder.CreatePublicBooking
	log     *zap.SugaredLogger
}

func NewPublicHandler(
	db *gorm.DB,
	slots *ucOrder.GetAvailableSlots,
	booking *ucOrder.CreatePublicBooking,
	log *zap.SugaredLogger,
) *PublicHandler {
	return &PublicHandler{
		db:      db,
		slots:   slots,
		booking: booking,
		log:     log,
	}
}

// --------- Requests ---------

type PublicBookingRequest struct {
	Client struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	} `json:"client"`
	Car struct {
		Make        string `json:"make"`
		Model       string `json:"model"`
		PlateNumber string `json:"plate_number"`
	} `json:"car"`
	ServiceID string `json:"service_id"`
	StartTime string `json:"start_time"`
}

// --------- Handlers ---------

// AvailableSlots answers GET /public/available-slots/?date=YYYY-MM-DD&duration=N.
func (h *PublicHandler) AvailableSlots(c *gin.Context) {
	slots, err := h.slots.Execute(c.Request.Context(), ucOrder.AvailableSlotsInput{
		Date:     c.Query("date"),
		Duration: c.Query("duration"),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, slots)
}

func (h *PublicHandler) Booking(c *gin.Context) {
	var req PublicBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	res, err := h.booking.Execute(c.Request.Context(), ucOrder.PublicBookingInput{
		IdempotencyKey: c.GetHeader(IdempotencyHeader),
		ClientName:     req.Client.Name,
		ClientPhone:    req.Client.Phone,
		CarMake:        req.Car.Make,
		CarModel:       req.Car.Model,
		CarPlate:       req.Car.PlateNumber,
		ServiceID:      req.ServiceID,
		StartTime:      req.StartTime,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if res.Replayed {
		c.Header("Idempotent-Replayed", "true")
	}
	httpresp.Created(c, gin.H{"order_id": res.OrderID})
}

// Services lists the active catalogue for the booking form.
func (h *PublicHandler) Services(c *gin.Context) {
	var services []models.Service
	if err := h.db.WithContext(c.Request.Context()).
		Where("active = ?", true).
		Order("name ASC").
		Find(&services).Error; err != nil {

		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, publicServices(services))
}

type publicService struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Duration    int    `json:"duration"`
}

func publicServices(services []models.Service) []publicService {
	out := make([]publicService, 0, len(services))
	for _, s := range services {
		out = append(out, publicService{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Price:       s.Price.StringFixed(2),
			Duration:    s.DurationMin,
		})
	}
	return out
}
