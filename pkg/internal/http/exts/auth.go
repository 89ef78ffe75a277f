package exts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/desmin2102/HostelApp/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

// ContextMiddleware resolves the bearer token, when there is one, into the local account.
// Requests without a token pass through anonymous.
func ContextMiddleware(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) == 0 {
		return c.Next()
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || len(strings.TrimSpace(raw)) == 0 {
		return fiber.NewError(fiber.StatusUnauthorized, "authorization header must be a bearer token")
	}

	principal, err := ReadPrincipal(strings.TrimSpace(raw))
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}

	account, err := services.EnsureAccount(principal)
	if err != nil {
		return err
	}
	c.Locals("user", account)

	return c.Next()
}

// ReadPrincipal verifies an HS256 or HS512 token signed with the configured secret.
func ReadPrincipal(token string) (services.Principal, error) {
	secret := viper.GetString("security.jwt_secret")
	if len(secret) == 0 {
		return services.Principal{}, fmt.Errorf("authentication is not configured")
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{
		jwt.SigningMethodHS256.Alg(),
		jwt.SigningMethodHS512.Alg(),
	})); err != nil {
		return services.Principal{}, fmt.Errorf("invalid token: %v", err)
	}

	id, err := subjectOf(claims)
	if err != nil {
		return services.Principal{}, err
	}

	text := func(key string) string {
		value, _ := claims[key].(string)
		return value
	}
	return services.Principal{
		ID:    id,
		Name:  text("name"),
		Nick:  text("nick"),
		Email: text("email"),
		Phone: text("phone"),
		Role:  text("role"),
	}, nil
}

func subjectOf(claims jwt.MapClaims) (uint, error) {
	switch sub := claims["sub"].(type) {
	case string:
		id, err := strconv.ParseUint(sub, 10, 64)
		if err != nil || id == 0 {
			return 0, fmt.Errorf("invalid token: sub must be an account id")
		}
		return uint(id), nil
	case float64:
		if sub < 1 || sub != float64(uint(sub)) {
			return 0, fmt.Errorf("invalid token: sub must be an account id")
		}
		return uint(sub), nil
	default:
		return 0, fmt.Errorf("invalid token: sub is missing")
	}
}

func GetUser(c *fiber.Ctx) (models.Account, bool) {
	user, ok := c.Locals("user").(models.Account)
	return user, ok
}

// GetUserPtr is GetUser for filters that take an optional viewer.
func GetUserPtr(c *fiber.Ctx) *models.Account {
	if user, ok := GetUser(c); ok {
		return &user
	}
	return nil
}

func EnsureAuthenticated(c *fiber.Ctx) error {
	if _, ok := GetUser(c); !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication is required")
	}
	return nil
}

func EnsureRole(c *fiber.Ctx, role string) error {
	user, ok := GetUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication is required")
	}
	if user.Role != role {
		return services.NewPermissionDeniedError(fmt.Sprintf("only %s accounts are allowed", role))
	}
	return nil
}

// StaffOnly guards a whole route group.
func StaffOnly(c *fiber.Ctx) error {
	if err := EnsureRole(c, models.AccountRoleStaff); err != nil {
		return err
	}
	return c.Next()
}
