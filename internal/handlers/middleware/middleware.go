package middleware

import (
	"errors"
	"strings"
	"time"

	"surveyhub/config"
	"surveyhub/internal/database"
	"surveyhub/internal/events"
	"surveyhub/internal/logger"
	"surveyhub/internal/models"
	"surveyhub/internal/repositories"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

type Middleware struct {
	db       database.DB
	eventBus *events.EventBus
	config   config.Config
	userRepo repositories.UserRepository
	log      logger.Logger
}

func New(db database.DB, eventBus *events.EventBus, config config.Config, userRepo repositories.UserRepository) Middleware {
	return Middleware{
		db:       db,
		eventBus: eventBus,
		config:   config,
		userRepo: userRepo,
		log:      logger.New("middleware"),
	}
}

type sessionClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// SignToken issues a session token for a user. Expiry comes from
// SESSION_EXPIRY_HOURS.
func (m Middleware) SignToken(userID, role string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(m.config.SessionExpiryHours) * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.config.SessionSecret))
}

func (m Middleware) parseToken(tok string) (*sessionClaims, error) {
	t, err := jwt.ParseWithClaims(tok, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		return []byte(m.config.SessionSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := t.Claims.(*sessionClaims); ok && t.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// RequireSession rejects requests without a valid bearer token and loads the
// authenticated user into c.Locals("user").
func (m Middleware) RequireSession(c *fiber.Ctx) error {
	log := m.log.Function("RequireSession")

	header := c.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"message": "error", "error": "missing bearer token"})
	}

	claims, err := m.parseToken(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
	if err != nil {
		log.Er("failed to parse session token", err)
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"message": "error", "error": "invalid session token"})
	}

	user, err := m.userRepo.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		log.Er("session token references unknown user", err, "userID", claims.UserID)
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"message": "error", "error": "invalid session token"})
	}

	c.Locals("user", *user)
	return c.Next()
}

// RequireAdmin gates admin-only routes. Must run after RequireSession.
func (m Middleware) RequireAdmin(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(models.User)
	if !ok || (user.Role != models.RoleAdmin && user.Role != models.RoleRoot) {
		return c.Status(fiber.StatusForbidden).
			JSON(fiber.Map{"message": "error", "error": "admin access required"})
	}
	return c.Next()
}
