package handlers

import (
	"errors"
	"net/http"

	"github.com/esports-arena/tournament-hub/middleware"
	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(tournamentService services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: tournamentService}
}

func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	input := services.ListTournamentsInput{
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.TournamentStatus(raw)
		input.Status = &status
	}
	if raw := r.URL.Query().Get("game"); raw != "" {
		input.Game = &raw
	}
	if raw := r.URL.Query().Get("mode"); raw != "" {
		mode := models.TournamentMode(raw)
		input.Mode = &mode
	}

	tournaments, err := h.tournamentService.List(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"tournaments": tournaments}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"tournament": tournament}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	organizerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), organizerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusCreated, jsonResponse{"tournament": tournament}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	organizerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	id, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.Update(r.Context(), id, organizerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"tournament": tournament}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	organizerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	id, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.tournamentService.Delete(r.Context(), id, organizerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"message": "tournament deleted"}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) SetRoomCredentials(w http.ResponseWriter, r *http.Request) {
	organizerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	id, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input models.RoomCredentials
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.tournamentService.SetRoomCredentials(r.Context(), id, organizerID, input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"message": "room credentials updated"}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MyTournaments lists tournaments the caller has a live registration for.
func (h *TournamentHandler) MyTournaments(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	tournaments, err := h.tournamentService.ListByPlayer(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"tournaments": tournaments}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) UploadBanner(w http.ResponseWriter, r *http.Request) {
	organizerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	id, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, errors.New("Content-Type header is required"))
		return
	}
	defer r.Body.Close()

	tournament, err := h.tournamentService.UploadBanner(r.Context(), id, organizerID, contentType, r.Body)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"tournament": tournament}); err != nil {
		serverErrorResponse(w, r, err)
	}
}
