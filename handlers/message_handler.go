package handlers

import (
	"errors"
	"net/http"

	"github.com/esports-arena/tournament-hub/middleware"
	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/services"
)

type MessageHandler struct {
	messageService services.MessageService
}

func NewMessageHandler(messageService services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Create accepts the public contact form. When the caller is logged in,
// the message is linked to their account.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateMessageInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	if userID, err := middleware.GetUserIDFromContext(r.Context()); err == nil {
		input.UserID = &userID
	}

	message, err := h.messageService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusCreated, jsonResponse{"message_record": message}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	var statusFilter *models.MessageStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.MessageStatus(raw)
		if status != models.MessageUnread && status != models.MessageRead {
			badRequestResponse(w, errors.New("status must be 'unread' or 'read'"))
			return
		}
		statusFilter = &status
	}

	messages, err := h.messageService.List(r.Context(), statusFilter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"messages": messages}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	message, err := h.messageService.MarkRead(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"message_record": message}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.messageService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"message": "message deleted"}); err != nil {
		serverErrorResponse(w, r, err)
	}
}
