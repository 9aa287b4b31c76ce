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

type CarMakeHandler struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewCarMakeHandler(db *gorm.DB, log *zap.SugaredLogger) *CarMakeHandler {
	return &CarMakeHandler{db: db, log: log}
}

type CreateCarMakeRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *CarMakeHandler) List(c *gin.Context) {
	var makes []models.CarMake
	if err := h.db.WithContext(c.Request.Context()).
		Order("name ASC").
		Find(&makes).Error; err != nil {

		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, makes)
}

func (h *CarMakeHandler) Create(c *gin.Context) {
	var req CreateCarMakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		httperr.BadRequest(c, "missing_fields", "name is required.")
		return
	}

	db := h.db.WithContext(c.Request.Context())

	taken, err := exists(db, &models.CarMake{}, "LOWER(name) = ?", strings.ToLower(name))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if taken {
		httperr.Conflict(c, "car_make_exists", "Car make already exists.")
		return
	}

	m := models.CarMake{Name: name}
	if err := db.Create(&m).Error; err != nil {
		if httperr.IsConstraintConflict(err) {
			httperr.Conflict(c, "car_make_exists", "Car make already exists.")
			return
		}
		respondError(c, h.log, err)
		return
	}

	httpresp.Created(c, m)
}
