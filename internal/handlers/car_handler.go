package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/detailing-scheduler/internal/httperr"
	"github.com/BruksfildServices01/detailing-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
)

type CarHandler struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewCarHandler(db *gorm.DB, log *zap.SugaredLogger) *CarHandler {
	return &CarHandler{db: db, log: log}
}

// --------- Requests ---------

type CreateCarRequest struct {
	ClientID     string `json:"client_id" binding:"required"`
	Make         string `json:"make" binding:"required"`
	Model        string `json:"model" binding:"required"`
	LicensePlate string `json:"license_plate"`
}

type UpdateCarRequest struct {
	Make         *string `json:"make,omitempty"`
	Model        *string `json:"model,omitempty"`
	LicensePlate *string `json:"license_plate,omitempty"`
}

// --------- Handlers ---------

func (h *CarHandler) List(c *gin.Context) {
	h.list(c, h.db.WithContext(c.Request.Context()))
}

func (h *CarHandler) ListByClient(c *gin.Context) {
	h.list(c, h.db.WithContext(c.Request.Context()).Where("client_id = ?", c.Param("client_id")))
}

func (h *CarHandler) list(c *gin.Context, q *gorm.DB) {
	var cars []models.Car
	if err := q.Order("created_at DESC").Find(&cars).Error; err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cars)
}

func (h *CarHandler) Create(c *gin.Context) {
	var req CreateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	db := h.db.WithContext(c.Request.Context())

	found, err := exists(db, &models.Client{}, "id = ?", req.ClientID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !found {
		httperr.BadRequest(c, "client_not_found", "Client not found.")
		return
	}

	plate := strings.ToUpper(strings.TrimSpace(req.LicensePlate))
	if plate == "" {
		plate = models.PlateNotSpecified
	}

	car := models.Car{
		ClientID:     req.ClientID,
		Make:         strings.TrimSpace(req.Make),
		Model:        strings.TrimSpace(req.Model),
		LicensePlate: plate,
	}

	if err := db.Create(&car).Error; err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.Created(c, car)
}

func (h *CarHandler) Update(c *gin.Context) {
	var req UpdateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	db := h.db.WithContext(c.Request.Context())

	var car models.Car
	if err := db.Where("id = ?", c.Param("id")).First(&car).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "car_not_found", "Car not found.")
			return
		}
		respondError(c, h.log, err)
		return
	}

	if req.Make != nil {
		car.Make = strings.TrimSpace(*req.Make)
	}
	if req.Model != nil {
		car.Model = strings.TrimSpace(*req.Model)
	}
	if req.LicensePlate != nil {
		car.LicensePlate = strings.ToUpper(strings.TrimSpace(*req.LicensePlate))
	}

	if err := db.Save(&car).Error; err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, car)
}

func (h *CarHandler) Delete(c *gin.Context) {
	res := h.db.WithContext(c.Request.Context()).Delete(&models.Car{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		if httperr.IsForeignKeyViolation(res.Error) {
			httperr.Conflict(c, "car_in_use", "The car is referenced by orders.")
			return
		}
		respondError(c, h.log, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "car_not_found", "Car not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Car deleted."})
}
