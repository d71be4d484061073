package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

// CallerKey is the context key under which the authenticated caller is stored.
const CallerKey contextKey = "caller"

// Role names recognized by the authorization gate.
const (
	RolePatient = "patient"
	RoleHCP     = "hcp"
	RoleAdmin   = "admin"
)

// Caller is the authenticated identity attached to a request. It is resolved
// once by CallerMiddleware and never mutated afterwards.
type Caller struct {
	ID       uuid.UUID
	Username string
	Role     string
}

// Claims are the token claims accepted by CallerMiddleware. Subject carries
// the username.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Resolver loads the stored record for a username so the caller carries the
// role and id on file rather than whatever the token asserts.
type Resolver interface {
	ResolveCaller(ctx context.Context, username string) (*Caller, error)
}

// CallerConfig configures CallerMiddleware.
type CallerConfig struct {
	// SigningKey verifies bearer tokens (HMAC).
	SigningKey []byte
	// DevMode additionally accepts X-User / X-User-Role headers in place of
	// a token.
	DevMode bool
	// Resolver maps the token subject to a stored user record.
	Resolver Resolver
}

// CallerMiddleware authenticates the request and stores a Caller in both the
// echo context and the request context. Requests without a usable identity
// get 401.
func CallerMiddleware(cfg CallerConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")

			if authHeader == "" {
				if cfg.DevMode {
					return devCaller(c, cfg, next)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				return cfg.SigningKey, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has no subject")
			}

			caller, err := cfg.Resolver.ResolveCaller(c.Request().Context(), claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
			}

			setCaller(c, caller)
			return next(c)
		}
	}
}

// devCaller builds a caller from X-User / X-User-Role headers. The stored
// record wins when the username is on file; the headers alone carry requests
// for users that are not.
func devCaller(c echo.Context, cfg CallerConfig, next echo.HandlerFunc) error {
	username := c.Request().Header.Get("X-User")
	if username == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	if cfg.Resolver != nil {
		if caller, err := cfg.Resolver.ResolveCaller(c.Request().Context(), username); err == nil {
			setCaller(c, caller)
			return next(c)
		}
	}

	role := c.Request().Header.Get("X-User-Role")
	if role == "" {
		role = RoleAdmin
	}
	setCaller(c, &Caller{Username: username, Role: role})
	return next(c)
}

func setCaller(c echo.Context, caller *Caller) {
	c.Set(string(CallerKey), caller)
	ctx := context.WithValue(c.Request().Context(), CallerKey, caller)
	c.SetRequest(c.Request().WithContext(ctx))
}

// CallerFrom returns the caller attached to the echo context, or nil for an
// unauthenticated request.
func CallerFrom(c echo.Context) *Caller {
	caller, _ := c.Get(string(CallerKey)).(*Caller)
	return caller
}

// CallerFromContext returns the caller attached to a request context.
func CallerFromContext(ctx context.Context) *Caller {
	caller, _ := ctx.Value(CallerKey).(*Caller)
	return caller
}
