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
	"github.com/BruksfildServices01/detailing-scheduler/internal/validators"
)

type ClientHandler struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewClientHandler(db *gorm.DB, log *zap.SugaredLogger) *ClientHandler {
	return &ClientHandler{db: db, log: log}
}

type CreateClientRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
}

// ======================================================
// LIST CLIENTS
// ======================================================
func (h *ClientHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context())

	if query := strings.ToLower(strings.TrimSpace(c.Query("query"))); query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(full_name) LIKE ? OR phone LIKE ?", like, like)
	}

	var clients []models.Client
	if err := q.
		Order("created_at DESC").
		Find(&clients).Error; err != nil {

		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, clients)
}

// ======================================================
// CREATE CLIENT
// ======================================================
func (h *ClientHandler) Create(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	phone, ok := validators.NormalizePhone(req.PhoneNumber)
	if !ok {
		httperr.BadRequest(c, "invalid_phone", "Phone number is not valid.")
		return
	}

	db := h.db.WithContext(c.Request.Context())

	taken, err := exists(db, &models.Client{}, "phone = ?", phone)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if taken {
		httperr.Conflict(c, "client_exists", "A client with this phone number already exists.")
		return
	}

	client := models.Client{
		FullName: strings.TrimSpace(req.FullName),
		Phone:    phone,
	}

	if err := db.Create(&client).Error; err != nil {
		if httperr.IsConstraintConflict(err) {
			httperr.Conflict(c, "client_exists", "A client with this phone number already exists.")
			return
		}
		respondError(c, h.log, err)
		return
	}

	httpresp.Created(c, client)
}
