package handlers

import (
	"net/http"

	"github.com/esports-arena/tournament-hub/middleware"
	"github.com/esports-arena/tournament-hub/services"
)

type TransactionHandler struct {
	transactionService services.TransactionService
}

func NewTransactionHandler(transactionService services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

func (h *TransactionHandler) MyTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	h.listForUser(w, r, userID)
}

func (h *TransactionHandler) UserTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "id")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	h.listForUser(w, r, userID)
}

func (h *TransactionHandler) AllTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.transactionService.ListAll(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"transactions": transactions}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TransactionHandler) listForUser(w http.ResponseWriter, r *http.Request, userID int) {
	transactions, err := h.transactionService.ListByUser(r.Context(), userID, queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"transactions": transactions}); err != nil {
		serverErrorResponse(w, r, err)
	}
}
