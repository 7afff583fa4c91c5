package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventticketing/internal/delivery/http/helpers"
	"eventticketing/internal/domain"
)

type AdminController struct {
	Logger  *slog.Logger
	Tickets domain.TicketService
}

func NewAdminController(logger *slog.Logger, tickets domain.TicketService) *AdminController {
	return &AdminController{
		Logger:  logger,
		Tickets: tickets,
	}
}

// ReissueTicket godoc
// @Summary Re-issue a ticket for an active registration
// @Description Cancels the registration's live ticket (if any) and issues a fresh one with a new code, atomically. Intended for support cases such as a leaked or lost ticket code.
// @Tags admin
// @Produce json
// @Security AdminKey
// @Param registrationID path string true "Registration ID (UUID)"
// @Success 201 {object} controllers.TicketSuccessResponse "New ticket issued"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (registration not active)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/registrations/{registrationID}/ticket [post]
func (c *AdminController) ReissueTicket(w http.ResponseWriter, r *http.Request) {
	registrationID := r.PathValue("registrationID")
	if registrationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing registrationID")
		return
	}
	if !uuidRegex.MatchString(registrationID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid registrationID")
		return
	}

	ticket, err := c.Tickets.ReissueForRegistration(r.Context(), registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "registration not found")
			return
		}
		if errors.Is(err, domain.ErrAlreadyCancelled) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "registration is not active")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, ticket)
}
