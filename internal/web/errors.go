package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Formatted appropriately based on request type (HTMX, JSON, or HTML)
//
// Error codes:
//
//	CFG001 - The table layout is invalid
//	SES001 - The browser session expired or was never created
//	SRC001 - Token records could not be loaded
//	SRC002 - Too many refreshes are already running
//	ROW001 - The requested row or its token does not exist
//	ROW002 - The records changed since the row was shown
//	ERR000 - Anything else

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/tokengrid/internal/grid"
	"github.com/JonMunkholm/tokengrid/internal/session"
	"github.com/JonMunkholm/tokengrid/internal/source"
	"github.com/JonMunkholm/tokengrid/internal/web/components"
)

var (
	// errRowNotFound is returned when a row index or its secret is missing.
	errRowNotFound = errors.New("row not found")
	// errRowStale is returned when a row link predates the current records.
	errRowStale = errors.New("row link is from an earlier record set")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// MapError converts an error into a user-facing message.
func MapError(err error) UserMessage {
	var verr *grid.ValidationError
	var ferr *source.FetchError

	switch {
	case errors.As(err, &verr):
		return UserMessage{
			Message: "The table layout is invalid",
			Action:  "Fix the layout file and restart the server",
			Code:    "CFG001",
		}
	case errors.Is(err, session.ErrNotFound):
		return UserMessage{
			Message: "Your session has expired",
			Action:  "Reload the page to start a new session",
			Code:    "SES001",
		}
	case errors.Is(err, source.ErrBusy):
		return UserMessage{
			Message: "The token store is busy",
			Action:  "Wait a moment and refresh again",
			Code:    "SRC002",
		}
	case errors.As(err, &ferr), errors.Is(err, source.ErrUnknownKind):
		return UserMessage{
			Message: "Tokens could not be loaded",
			Action:  "Please try again in a few moments",
			Code:    "SRC001",
		}
	case errors.Is(err, errRowNotFound):
		return UserMessage{
			Message: "That token no longer exists",
			Action:  "Refresh the table",
			Code:    "ROW001",
		}
	case errors.Is(err, errRowStale):
		return UserMessage{
			Message: "The tokens were reloaded since this table was shown",
			Action:  "Refresh the table",
			Code:    "ROW002",
		}
	}

	if err != nil && strings.Contains(strings.ToLower(err.Error()), "timeout") {
		return UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again",
			Code:    "SRC001",
		}
	}

	return UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again or contact support",
		Code:    "ERR000",
	}
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and returns an appropriate response
// based on the request type (HTMX, JSON, or HTML).
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := MapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	if isHTMX(r) {
		renderErrorPartial(w, r, userMsg, statusCode)
	} else if wantsJSON(r) {
		respondErrorJSON(w, userMsg, statusCode)
	} else {
		respondErrorHTML(w, userMsg, statusCode)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorHTML writes a plain HTML error response.
func respondErrorHTML(w http.ResponseWriter, msg UserMessage, statusCode int) {
	http.Error(w, msg.Message+" ("+msg.Code+")", statusCode)
}

// renderErrorPartial renders an HTMX-compatible error fragment into the
// modal slot.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("HX-Retarget", "#"+components.ModalID)
	w.Header().Set("HX-Reswap", "innerHTML")
	w.WriteHeader(statusCode)
	components.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
