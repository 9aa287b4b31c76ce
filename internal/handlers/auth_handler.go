package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/detailing-scheduler/internal/config"
	"github.com/BruksfildServices01/detailing-scheduler/internal/httperr"
	"github.com/BruksfildServices01/detailing-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/detailing-scheduler/internal/middleware"
	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
)

type AuthHandler struct {
	db     *gorm.DB
	config *config.Config
	log    *zap.SugaredLogger
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{db: db, config: cfg, log: log}
}

// --------- Requests ---------

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateEmployeeRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))

	var emp models.Employee
	if err := h.db.WithContext(c.Request.Context()).
		Where("username = ?", username).
		First(&emp).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			httperr.Unauthorized(c, "invalid_credentials", "Invalid username or password.")
			return
		}
		respondError(c, h.log, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "Invalid username or password.")
		return
	}

	token, err := middleware.IssueToken(h.config.JWTSecret, &emp, time.Now())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"employee": emp,
	})
}

// Me returns the authenticated employee.
func (h *AuthHandler) Me(c *gin.Context) {
	var emp models.Employee
	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ?", c.GetString(middleware.ContextEmployeeID)).
		First(&emp).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			httperr.Unauthorized(c, "employee_not_found", "Employee no longer exists.")
			return
		}
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, emp)
}

func (h *AuthHandler) ListEmployees(c *gin.Context) {
	var employees []models.Employee
	if err := h.db.WithContext(c.Request.Context()).
		Order("full_name ASC").
		Find(&employees).Error; err != nil {

		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, employees)
}

func (h *AuthHandler) CreateEmployee(c *gin.Context) {
	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	if !models.IsValidRole(req.Role) {
		httperr.BadRequest(c, "invalid_role", "Role must be Admin, Manager or Master.")
		return
	}

	emp, err := NewEmployee(req.Username, req.Password, req.FullName, req.Role)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	db := h.db.WithContext(c.Request.Context())

	taken, err := exists(db, &models.Employee{}, "username = ?", emp.Username)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if taken {
		httperr.Conflict(c, "employee_exists", "An employee with this username already exists.")
		return
	}

	if err := db.Create(emp).Error; err != nil {
		if httperr.IsConstraintConflict(err) {
			httperr.Conflict(c, "employee_exists", "An employee with this username already exists.")
			return
		}
		respondError(c, h.log, err)
		return
	}

	httpresp.Created(c, emp)
}

// NewEmployee hashes password and normalizes the username.
func NewEmployee(username, password, fullName, role string) (*models.Employee, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &models.Employee{
		Username:     strings.ToLower(strings.TrimSpace(username)),
		PasswordHash: string(hashed),
		FullName:     strings.TrimSpace(fullName),
		Role:         role,
	}, nil
}
