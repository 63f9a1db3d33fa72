package handlers

import (
	"net/http"

	"github.com/esports-arena/tournament-hub/middleware"
	"github.com/esports-arena/tournament-hub/services"
)

type RegistrationHandler struct {
	registrationService services.RegistrationService
}

func NewRegistrationHandler(registrationService services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	var input services.RegisterInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	registration, err := h.registrationService.Register(r.Context(), playerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusCreated, jsonResponse{"registration": registration}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RegistrationHandler) MyRegistrations(w http.ResponseWriter, r *http.Request) {
	playerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	registrations, err := h.registrationService.ListByPlayer(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"registrations": registrations}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// TournamentRoster returns the confirmed registrations for a tournament.
func (h *RegistrationHandler) TournamentRoster(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	registrations, err := h.registrationService.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"registrations": registrations}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RegistrationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	id, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.registrationService.Cancel(r.Context(), id, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"message": "registration cancelled"}); err != nil {
		serverErrorResponse(w, r, err)
	}
}
