package report

import (
	"net/http"

	"stage-manager/internal/attendance"
	"stage-manager/internal/middleware"
	"stage-manager/internal/shared/apperror"
	"stage-manager/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("report.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("report request failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Summary(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	f, err := attendance.FilterFromQuery(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.Summary(c.Request.Context(), actor, f)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Export(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	f, err := attendance.FilterFromQuery(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	file, err := h.service.Export(c.Request.Context(), actor, f, c.DefaultQuery("format", FormatPDF))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Attachment(c, http.StatusOK, file.ContentType, file.Filename, file.Data)
}
