package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/detailing-scheduler/internal/httperr"
	"github.com/BruksfildServices01/detailing-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/detailing-scheduler/internal/media"
)

const maxUploadBytes = 15 << 20

type MediaHandler struct {
	uploader *media.Uploader
	log      *zap.SugaredLogger
}

// NewMediaHandler accepts a nil uploader; uploads then answer 503.
func NewMediaHandler(uploader *media.Uploader, log *zap.SugaredLogger) *MediaHandler {
	return &MediaHandler{uploader: uploader, log: log}
}

func (h *MediaHandler) Upload(c *gin.Context) {
	if h.uploader == nil {
		httperr.Unavailable(c, "storage_not_configured", "Media storage is not configured.")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		httperr.BadRequest(c, "missing_file", "Multipart field \"file\" is required.")
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	res, err := h.uploader.Upload(c.Request.Context(), data)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedImage) {
			httperr.BadRequest(c, "unsupported_image", "Only JPEG, PNG and WebP images are accepted.")
			return
		}
		respondError(c, h.log, err)
		return
	}

	h.log.Infow("media uploaded", "key", res.Key, "width", res.Width, "height", res.Height)
	httpresp.Created(c, res)
}
