package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	autherrors "stage-manager/internal/auth/errors"
	"stage-manager/internal/permission"
	"stage-manager/internal/shared/apperror"
	"stage-manager/internal/shared/contextutil"
	"stage-manager/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Token not found", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			errObj := autherrors.ErrInvalidToken
			if errors.Is(err, jwt.ErrTokenExpired) {
				errObj = autherrors.ErrTokenExpired
			}
			response.Error(c, errObj.HTTPStatus, errObj.Code, errObj.Message, nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Invalid token claims", nil)
			c.Abort()
			return
		}

		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "User ID not found in token", nil)
			c.Abort()
			return
		}

		rawRole, _ := claims["role"].(string)
		role, err := permission.ParseRole(rawRole)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Role not found in token", nil)
			c.Abort()
			return
		}

		name, _ := claims["name"].(string)

		c.Set("user_id", userID)
		c.Set("name", name)
		c.Set("role", string(role))

		ctx := contextutil.WithUserID(c.Request.Context(), userID)
		ctx = contextutil.WithRole(ctx, string(role))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// CurrentActor returns the session user set by AuthMiddleware.
func CurrentActor(c *gin.Context) (permission.Actor, error) {
	userID := c.GetString("user_id")
	role, err := permission.ParseRole(c.GetString("role"))
	if userID == "" || err != nil {
		return permission.Actor{}, apperror.ErrUnauthorized
	}
	return permission.Actor{ID: userID, Name: c.GetString("name"), Role: role}, nil
}
