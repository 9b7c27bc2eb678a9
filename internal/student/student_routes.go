package student

import (
	"stage-manager/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	rdb *redis.Client,
	jwtSecret string,
	logger *zap.Logger,
) {
	students := r.Group("/students")
	students.Use(middleware.AuthMiddleware(jwtSecret))
	students.Use(middleware.ContextLogger(logger))
	{
		students.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "student", "read"),
			handler.GetAll,
		)

		students.GET("/options",
			middleware.RateLimitByUser(5, 20),
			middleware.RBACAuthorize(rbacService, "student", "read"),
			handler.GetOptions,
		)

		students.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, "student", "read"),
			handler.GetByID,
		)

		students.POST("",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "student", "create"),
			middleware.Idempotency(rdb),
			handler.Create,
		)
	}
}
