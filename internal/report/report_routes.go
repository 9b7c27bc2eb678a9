package report

import (
	"stage-manager/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	rbacService middleware.RBACService,
	jwtSecret string,
	logger *zap.Logger,
) {
	reports := r.Group("/reports")
	reports.Use(middleware.AuthMiddleware(jwtSecret))
	reports.Use(middleware.ContextLogger(logger))
	{
		reports.GET("/summary",
			middleware.RateLimitByUser(5, 20),
			middleware.RBACAuthorize(rbacService, "report", "read"),
			h.Summary,
		)
		reports.GET("/export",
			middleware.RateLimitByUser(0.5, 3),
			middleware.RBACAuthorize(rbacService, "report", "export"),
			h.Export,
		)
	}
}
