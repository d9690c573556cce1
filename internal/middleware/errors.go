package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// problem mirrors the RFC 7807 body written by the handler package, so that
// clients see one error shape whether a request fails before or inside a
// handler
type problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

const problemTypeBase = "https://budgetreq.app/errors/"

func writeProblem(c echo.Context, status int, slug, detail string) error {
	return c.JSON(status, problem{
		Type:     problemTypeBase + slug,
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

func unauthorizedError(c echo.Context, detail string) error {
	return writeProblem(c, http.StatusUnauthorized, "unauthorized", detail)
}

func rateLimitError(c echo.Context, detail string) error {
	return writeProblem(c, http.StatusTooManyRequests, "rate-limit", detail)
}
