package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/that-that/waldo/permissions"
	"github.com/that-that/waldo/repository"
)

const actorKey = "actor"

// Auth validates the bearer token, loads the user it names and stores the
// resulting actor in request locals. Token issuance happens elsewhere;
// this middleware only verifies.
func Auth(secret string, users repository.UserRepository, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "missing Authorization header"})
		}
		tokenString := header
		if after, ok := strings.CutPrefix(header, "Bearer "); ok {
			tokenString = after
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "invalid token"})
		}

		subject, err := token.Claims.GetSubject()
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "invalid token subject"})
		}
		userID, err := uuid.Parse(subject)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "invalid token subject"})
		}

		user, err := users.GetByID(userID)
		if err != nil {
			log.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Warn("Token names unknown user")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "unknown user"})
		}

		c.Locals(actorKey, permissions.Actor{
			ID:          user.ID,
			Role:        user.Role,
			Blacklisted: user.Blacklisted,
		})
		return c.Next()
	}
}

// ActorFromContext returns the actor the auth middleware stored.
func ActorFromContext(c *fiber.Ctx) (permissions.Actor, bool) {
	actor, ok := c.Locals(actorKey).(permissions.Actor)
	return actor, ok
}
