package attendance

import (
	"stage-manager/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	rbacService middleware.RBACService,
	rdb *redis.Client,
	jwtSecret string,
	logger *zap.Logger,
) {
	attendances := r.Group("/attendances")
	attendances.Use(middleware.AuthMiddleware(jwtSecret))
	attendances.Use(middleware.ContextLogger(logger))
	{
		attendances.GET("",
			middleware.RateLimitByUser(5, 20),
			middleware.RBACAuthorize(rbacService, "attendance", "read"),
			h.List,
		)
		attendances.GET("/permissions",
			middleware.RBACAuthorize(rbacService, "attendance", "read"),
			h.Permissions,
		)
		attendances.POST("",
			middleware.RateLimitByUser(2, 5),
			middleware.RBACAuthorize(rbacService, "attendance", "write"),
			middleware.Idempotency(rdb),
			h.Register,
		)
		attendances.POST("/generate",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "attendance", "write"),
			middleware.Idempotency(rdb),
			h.Generate,
		)
		attendances.POST("/import",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "attendance", "write"),
			middleware.Idempotency(rdb),
			h.Import,
		)
		attendances.PATCH("/:id/presence",
			middleware.RateLimitByUser(5, 20),
			middleware.RBACAuthorize(rbacService, "attendance", "write"),
			h.SetPresence,
		)
	}
}
