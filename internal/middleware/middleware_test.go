package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/orders/:id", append(mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"employee": c.GetString(ContextEmployeeID),
			"role":     c.GetString(ContextEmployeeRole),
		})
	})...)
	return r
}

func doGet(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/orders/42", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	emp := &models.Employee{ID: "emp-1", Role: models.RoleManager}
	token, err := IssueToken(secret, emp, time.Now())
	require.NoError(t, err)

	r := newRouter(AuthMiddleware(secret))

	rec := doGet(r, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"employee":"emp-1","role":"Manager"}`, rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "garbage").Code)

	expired, err := IssueToken(secret, emp, time.Now().Add(-48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, expired).Code)

	forged, err := IssueToken("other-secret", emp, time.Now())
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, forged).Code)
}

func TestAuthMiddlewareRejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.MapClaims{"sub": "emp-1", "role": "Admin", "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, doGet(newRouter(AuthMiddleware(secret)), token).Code)
}

func TestRequireRole(t *testing.T) {
	r := newRouter(AuthMiddleware(secret), RequireRole(models.RoleAdmin))

	master, _ := IssueToken(secret, &models.Employee{ID: "m", Role: models.RoleMaster}, time.Now())
	admin, _ := IssueToken(secret, &models.Employee{ID: "a", Role: models.RoleAdmin}, time.Now())

	assert.Equal(t, http.StatusForbidden, doGet(r, master).Code)
	assert.Equal(t, http.StatusOK, doGet(r, admin).Code)
}

type observer struct {
	route  string
	status int
}

func (o *observer) ObserveRequest(_ string, route string, status int, _ time.Duration) {
	o.route, o.status = route, status
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	obs := &observer{}
	r := newRouter(Metrics(obs))

	doGet(r, "")

	assert.Equal(t, "/orders/:id", obs.route)
	assert.Equal(t, http.StatusOK, obs.status)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware())
	r.OPTIONS("/api/public/booking/", func(c *gin.Context) {})

	req := httptest.NewRequest(http.MethodOptions, "/api/public/booking/", nil)
	req.Header.Set("Origin", "https://detailing.example")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
}
