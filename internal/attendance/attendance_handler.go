package attendance

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	attendanceerrors "stage-manager/internal/attendance/errors"
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
	l := zap.L().Named("attendance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("attendance request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) List(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	f, err := FilterFromQuery(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.List(c.Request.Context(), actor, f)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if pageSize < 1 {
		pageSize = 50
	}

	start, end := response.Paginate(len(resp), page, pageSize)
	meta := response.NewPaginationMeta(int64(len(resp)), page, pageSize)
	response.Success(c, http.StatusOK, resp[start:end], &meta)
}

func (h *Handler) Generate(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http generate attendance validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Generate(c.Request.Context(), actor, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Register(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http register attendance validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Register(c.Request.Context(), actor, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) SetPresence(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var req SetPresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http set presence validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.SetPresence(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Import(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http import attendance validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Import(c.Request.Context(), actor, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Permissions(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, h.service.Permissions(c.Request.Context(), actor), nil)
}

// FilterFromQuery reads from, to, q and studentId (repeatable or comma
// separated) from the query string.
func FilterFromQuery(c *gin.Context) (Filter, error) {
	var f Filter

	if v := strings.TrimSpace(c.Query("from")); v != "" {
		d, err := time.Parse(DateLayout, v)
		if err != nil {
			return Filter{}, apperror.WithCause(attendanceerrors.ErrInvalidDate, err)
		}
		f.From = &d
	}
	if v := strings.TrimSpace(c.Query("to")); v != "" {
		d, err := time.Parse(DateLayout, v)
		if err != nil {
			return Filter{}, apperror.WithCause(attendanceerrors.ErrInvalidDate, err)
		}
		f.To = &d
	}

	f.Search = strings.TrimSpace(c.Query("q"))

	for _, raw := range c.QueryArray("studentId") {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				f.StudentIDs = append(f.StudentIDs, id)
			}
		}
	}
	return f, nil
}
