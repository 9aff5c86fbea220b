package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wishgifthub/wishgifthub/internal/domain"
	"github.com/wishgifthub/wishgifthub/internal/present/rest/presenter"
	"github.com/wishgifthub/wishgifthub/internal/token"
)

var tracer = otel.Tracer("auth")

type requesterCtxKey struct{}

// RequesterFrom returns the authenticated requester stored by
// RequireAuth. ok is false on unauthenticated requests.
func RequesterFrom(ctx context.Context) (domain.Requester, bool) {
	requester, ok := ctx.Value(requesterCtxKey{}).(domain.Requester)
	return requester, ok
}

type AuthMiddleware struct {
	codec *token.Codec
}

func NewAuthMiddleware(codec *token.Codec) *AuthMiddleware {
	return &AuthMiddleware{
		codec: codec,
	}
}

// RequireAuth verifies the Bearer capability token and stores the
// resulting requester in the request context. Requests without a valid
// token are rejected with 401.
func (s *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.RequireAuth")
		defer span.End()

		authHeader := c.Request().Header.Get("authorization")
		if authHeader == "" {
			return presenter.Error(c, domain.UnauthenticatedError{Reason: "missing authorization header"})
		}

		split := strings.Split(authHeader, " ")
		if len(split) != 2 {
			span.RecordError(fmt.Errorf("invalid authentication header"))
			return presenter.Error(c, domain.UnauthenticatedError{Reason: "invalid authorization header"})
		}

		authType, raw := split[0], split[1]
		if authType != "Bearer" {
			span.RecordError(fmt.Errorf("only Bearer is acceptable"))
			return presenter.Error(c, domain.UnauthenticatedError{Reason: "only Bearer is acceptable"})
		}

		requester, err := s.codec.Verify(raw, time.Now())
		if err != nil {
			span.RecordError(errors.Wrap(err, "AuthMiddleware.RequireAuth: codec.Verify failed"))
			return presenter.Error(c, domain.UnauthenticatedError{Reason: "invalid or expired token"})
		}

		span.SetAttributes(attribute.String("RequesterId", requester.UserID.String()))

		ctx = context.WithValue(ctx, requesterCtxKey{}, requester)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
