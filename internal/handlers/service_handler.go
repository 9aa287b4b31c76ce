package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/detailing-scheduler/internal/domain/order"
	"github.com/BruksfildServices01/detailing-scheduler/internal/httperr"
	"github.com/BruksfildServices01/detailing-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
)

type ServiceHandler struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewServiceHandler(db *gorm.DB, log *zap.SugaredLogger) *ServiceHandler {
	return &ServiceHandler{db: db, log: log}
}

// --------- Requests ---------

type CreateServiceRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Duration    int             `json:"duration" binding:"required,min=1,max=1440"`
	CategoryID  *string         `json:"category_id"`
}

type UpdateServiceRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Duration    *int             `json:"duration,omitempty"`
	CategoryID  *string          `json:"category_id,omitempty"`
	Active      *bool            `json:"active,omitempty"`
}

// --------- Handlers ---------

func (h *ServiceHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context())

	switch strings.TrimSpace(c.Query("active")) {
	case "true":
		q = q.Where("active = ?", true)
	case "false":
		q = q.Where("active = ?", false)
	}

	if query := strings.ToLower(strings.TrimSpace(c.Query("query"))); query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var services []models.Service
	if err := q.Order("name ASC").Find(&services).Error; err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, publicServices(services))
}

func (h *ServiceHandler) Create(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	if req.Price.IsNegative() {
		httperr.BadRequest(c, "invalid_price", "Price must not be negative.")
		return
	}

	service := models.Service{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		DurationMin: req.Duration,
		CategoryID:  req.CategoryID,
		Active:      true,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&service).Error; err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.Created(c, service)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	if req.Price != nil && req.Price.IsNegative() {
		httperr.BadRequest(c, "invalid_price", "Price must not be negative.")
		return
	}
	if req.Duration != nil && (*req.Duration <= 0 || *req.Duration > domain.MaxDurationMin) {
		httperr.BadRequest(c, "invalid_duration", "Duration must be between 1 and 1440 minutes.")
		return
	}

	db := h.db.WithContext(c.Request.Context())

	var service models.Service
	if err := db.Where("id = ?", c.Param("id")).First(&service).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "service_not_found", "Service not found.")
			return
		}
		respondError(c, h.log, err)
		return
	}

	if req.Name != nil {
		service.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		service.Description = *req.Description
	}
	if req.Price != nil {
		service.Price = *req.Price
	}
	if req.Duration != nil {
		service.DurationMin = *req.Duration
	}
	if req.CategoryID != nil {
		service.CategoryID = req.CategoryID
	}
	if req.Active != nil {
		service.Active = *req.Active
	}

	if err := db.Save(&service).Error; err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, service)
}

func (h *ServiceHandler) Delete(c *gin.Context) {
	res := h.db.WithContext(c.Request.Context()).
		Delete(&models.Service{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		respondError(c, h.log, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "service_not_found", "Service not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Service deleted."})
}
