package middleware

import (
	"fmt"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"passport-apply/constants"
	"passport-apply/models/user"
	"passport-apply/types"
)

// VerifyToken parses and validates an HS256 bearer token.
func VerifyToken(tokenString string) (jwt.MapClaims, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// IdentityFromClaims builds the caller identity from verified claims.
func IdentityFromClaims(claims jwt.MapClaims) (user.Identity, error) {
	uid, ok := claims["uid"].(float64)
	if !ok {
		return user.Identity{}, fmt.Errorf("uid missing in token")
	}
	roleStr, _ := claims["role"].(string)
	role := user.Role(roleStr)
	if !role.IsValid() {
		return user.Identity{}, fmt.Errorf("role missing in token")
	}
	return user.Identity{UserID: uint(uid), Role: role}, nil
}

// RequireAuth checks for a valid bearer token, from the Authorization header
// or the access cookie, and attaches the claims and identity to the context.
func RequireAuth() fiber.Handler {
	return RequireRoles()
}

// RequireRoles authenticates the request and, when roles are given, rejects
// callers outside that set.
func RequireRoles(roles ...user.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var token string

		authHeader := c.Get("Authorization")
		if authHeader != "" {
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
					Status:  fiber.StatusUnauthorized,
					Message: "Invalid authorization header format",
				})
			}
			token = tokenParts[1]
		} else {
			token = c.Cookies(constants.AccessCookie)
			if token == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
					Status:  fiber.StatusUnauthorized,
					Message: "Authorization token missing",
				})
			}
		}

		claims, err := VerifyToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: "Session expired. Login again.",
			})
		}

		identity, err := IdentityFromClaims(claims)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Status:  fiber.StatusUnauthorized,
				Message: "Session expired. Login again.",
			})
		}

		if len(roles) > 0 {
			allowed := false
			for _, r := range roles {
				if identity.Role == r {
					allowed = true
					break
				}
			}
			if !allowed {
				return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
					Status:  fiber.StatusForbidden,
					Message: "Insufficient permissions",
				})
			}
		}

		c.Locals(constants.LocalsUser, claims)
		c.Locals(constants.LocalsIdentity, identity)
		return c.Next()
	}
}

// CallerIdentity returns the identity attached by RequireRoles.
func CallerIdentity(c *fiber.Ctx) (user.Identity, bool) {
	identity, ok := c.Locals(constants.LocalsIdentity).(user.Identity)
	return identity, ok
}
