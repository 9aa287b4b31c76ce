package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/detailing-scheduler/internal/httperr"
)

// respondError writes business errors as they are and logs everything else
// before answering 500.
func respondError(c *gin.Context, log *zap.SugaredLogger, err error) {
	if !httperr.IsBusinessError(err) {
		_ = c.Error(err)
		log.Errorw("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
	}
	httperr.Respond(c, err)
}

// exists reports whether any row of model matches the condition.
func exists(db *gorm.DB, model any, query string, args ...any) (bool, error) {
	var n int64
	if err := db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func invalidRequest(c *gin.Context, err error) {
	httperr.BadRequest(c, "invalid_request", err.Error())
}
