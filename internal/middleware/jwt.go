package middleware // middleware provides reusable HTTP middleware functions

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// DenylistPrefix namespaces revoked token IDs in Redis.  Logout writes
// "denylist:<jti>" with a TTL matching the token's remaining lifetime.
const DenylistPrefix = "denylist:"

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects its claims into the request context under
// "admin_user", "role", "jti" and "token_exp".  When a Redis client is
// provided, tokens revoked by logout are rejected; without Redis the
// denylist check is skipped and tokens simply age out.
func JWTAuth(secret string, rdb *redis.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid claims"})
			}

			jti, _ := claims["jti"].(string)
			if rdb != nil && jti != "" {
				n, err := rdb.Exists(c.Request().Context(), DenylistPrefix+jti).Result()
				if err == nil && n > 0 {
					return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "token revoked"})
				}
			}

			c.Set("admin_user", claims["sub"])
			c.Set("role", claims["role"])
			c.Set("jti", jti)
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				c.Set("token_exp", exp.Time)
			} else {
				c.Set("token_exp", time.Time{})
			}
			return next(c)
		}
	}
}
