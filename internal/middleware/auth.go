package middleware

import (
	"context"
	"strconv"
	"strings"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// IssueToken signs a JWT for the given user, valid for 7 days. The subject
// claim carries the user ID; staff status is never trusted from the token and
// is always re-checked against the database at the boundary.
func IssueToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(7 * 24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// parseBearer extracts and validates the bearer token, returning the user ID.
func parseBearer(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, models.NewUnauthorizedError("Invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, models.NewUnauthorizedError("Invalid token structure - missing subject")
	}

	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, models.NewUnauthorizedError("Invalid user ID in token")
	}

	return uint(userID), nil
}

// bearerFromHeader pulls the token out of "Bearer <token>", if present.
func bearerFromHeader(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// setUser stores the authenticated user ID in both Fiber locals and the
// request context so the context-aware logger picks it up.
func setUser(c *fiber.Ctx, userID uint) {
	c.Locals("userID", userID)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}

// AuthRequired enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	tokenString := bearerFromHeader(c)
	if tokenString == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	userID, err := parseBearer(tokenString)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}

	setUser(c, userID)
	return c.Next()
}

// AuthOptional resolves the user when a valid token is present but lets
// anonymous requests through. Comment submission accepts both.
func AuthOptional(c *fiber.Ctx) error {
	tokenString := bearerFromHeader(c)
	if tokenString == "" {
		return c.Next()
	}

	userID, err := parseBearer(tokenString)
	if err != nil {
		// A token was supplied but is bad; reject rather than silently
		// downgrading to anonymous.
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}

	setUser(c, userID)
	return c.Next()
}

// CurrentUserID returns the authenticated user ID from locals, 0 when anonymous.
func CurrentUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}
