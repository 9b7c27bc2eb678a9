package evaluation

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
	evaluations := r.Group("/evaluations")
	evaluations.Use(middleware.AuthMiddleware(jwtSecret))
	evaluations.Use(middleware.ContextLogger(logger))
	{
		evaluations.GET("",
			middleware.RateLimitByUser(5, 20),
			middleware.RBACAuthorize(rbacService, "evaluation", "read"),
			h.List,
		)
		evaluations.POST("",
			middleware.RateLimitByUser(2, 5),
			middleware.RBACAuthorize(rbacService, "evaluation", "create"),
			middleware.Idempotency(rdb),
			h.Create,
		)
	}
}
