package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"eventticketing/internal/delivery/http/helpers"
	"eventticketing/internal/domain"
)

// ticketCodeRegex matches the lowercase base32 codes the ticket service issues.
var ticketCodeRegex = regexp.MustCompile(`^[a-z2-7]{26}$`)

type TicketController struct {
	Logger  *slog.Logger
	Service domain.TicketService
}

func NewTicketController(logger *slog.Logger, svc domain.TicketService) *TicketController {
	return &TicketController{
		Logger:  logger,
		Service: svc,
	}
}

// TicketSuccessResponse is the success response envelope for ticket endpoints (200).
type TicketSuccessResponse struct {
	Data  *domain.Ticket    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// Verify godoc
// @Summary Verify a ticket code
// @Description Checks that the code names a valid ticket for an event that has not ended. Does not consume the ticket. A used, cancelled, or expired ticket fails with the current status in the message; a ticket whose event has ended fails even when the stored status is still valid.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param code path string true "Ticket code"
// @Success 200 {object} controllers.TicketSuccessResponse "Ticket is valid"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: ticket_invalid (current status or 'event ended' in message)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tickets/{code} [get]
func (c *TicketController) Verify(w http.ResponseWriter, r *http.Request) {
	code, ok := c.ticketCode(w, r)
	if !ok {
		return
	}

	ticket, err := c.Service.Verify(r.Context(), code)
	if err != nil {
		c.writeTicketError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ticket)
}

// Use godoc
// @Summary Consume a ticket
// @Description Verify plus an atomic valid-to-used transition. Exactly one of two concurrent calls for the same code succeeds; the other fails with the used status.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param code path string true "Ticket code"
// @Success 200 {object} controllers.TicketSuccessResponse "Ticket consumed"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: ticket_invalid (current status or 'event ended' in message)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tickets/{code}/use [post]
func (c *TicketController) Use(w http.ResponseWriter, r *http.Request) {
	code, ok := c.ticketCode(w, r)
	if !ok {
		return
	}

	ticket, err := c.Service.Use(r.Context(), code)
	if err != nil {
		c.writeTicketError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ticket)
}

func (c *TicketController) ticketCode(w http.ResponseWriter, r *http.Request) (string, bool) {
	code := r.PathValue("code")
	if code == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing ticket code")
		return "", false
	}
	if !ticketCodeRegex.MatchString(code) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid ticket code")
		return "", false
	}
	return code, true
}

func (c *TicketController) writeTicketError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "ticket not found")
		return
	}
	var wrongStatus *domain.TicketWrongStatusError
	if errors.As(err, &wrongStatus) {
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeTicketInvalid, wrongStatus.Error())
		return
	}
	if errors.Is(err, domain.ErrTicketEventEnded) {
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeTicketInvalid, "event has ended")
		return
	}
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
}
