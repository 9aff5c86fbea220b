package presenter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wishgifthub/wishgifthub/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

// Created wraps a successful creation.
func Created(c echo.Context, payload any) error {
	return c.JSON(http.StatusCreated, payload)
}

// NoContent finishes a request with an empty body.
func NoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// Error maps a domain error onto its HTTP status and a stable code.
// Internal errors are logged and never leak their message to clients.
func Error(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"})
	case errors.Is(err, domain.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: err.Error(), Code: "UNAUTHENTICATED"})
	case errors.Is(err, domain.ErrForbidden):
		return c.JSON(http.StatusForbidden, errorResponse{Error: err.Error(), Code: "ACCESS_DENIED"})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error(), Code: "RESOURCE_NOT_FOUND"})
	case errors.Is(err, domain.ErrConflict):
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error(), Code: "CONFLICT"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error(), Code: "DUPLICATE"})
	case errors.Is(err, domain.ErrBusinessRule):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "BUSINESS_RULE_VIOLATION"})
	default:
		slog.ErrorContext(c.Request().Context(), "internal error",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: "INTERNAL_ERROR"})
	}
}
