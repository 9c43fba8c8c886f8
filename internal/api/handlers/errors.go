package handlers

import (
	"errors"
	"net/http"

	"github.com/ramonehamilton/card-binder/internal/api/response"
	"github.com/ramonehamilton/card-binder/internal/browser"
)

// writeBrowserError maps browser errors to HTTP statuses.
func writeBrowserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, browser.ErrNotReady):
		response.ServiceUnavailable(w, err)
	case errors.Is(err, browser.ErrUnknownCard):
		response.NotFound(w, err)
	case errors.Is(err, browser.ErrInvalidTransition):
		response.Conflict(w, err)
	default:
		response.InternalError(w, err)
	}
}
