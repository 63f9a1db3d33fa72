package handlers

import (
	"errors"
	"net/http"

	"github.com/esports-arena/tournament-hub/middleware"
	"github.com/esports-arena/tournament-hub/services"
)

type WalletHandler struct {
	walletService services.WalletService
}

func NewWalletHandler(walletService services.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

func (h *WalletHandler) MyWallet(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	wallet, err := h.walletService.GetOrCreateWallet(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"wallet": wallet}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *WalletHandler) AllWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.walletService.ListWallets(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"wallets": wallets}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	var input struct {
		Amount      float64 `json:"amount"`
		BankDetails string  `json:"bank_details"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	wallet, err := h.walletService.Deposit(r.Context(), userID, input.Amount, input.BankDetails)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"wallet": wallet}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	var input struct {
		Amount      float64 `json:"amount"`
		BankDetails string  `json:"bank_details"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	wallet, err := h.walletService.Withdraw(r.Context(), userID, input.Amount, input.BankDetails)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"wallet": wallet}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	var input struct {
		ToUserID int     `json:"to_user_id"`
		Amount   float64 `json:"amount"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	if input.ToUserID <= 0 {
		badRequestResponse(w, errors.New("to_user_id is required"))
		return
	}

	if err := h.walletService.Transfer(r.Context(), userID, input.ToUserID, input.Amount); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"message": "transfer completed"}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *WalletHandler) AdminAdd(w http.ResponseWriter, r *http.Request) {
	h.adminAdjust(w, r, services.AdjustAdd)
}

func (h *WalletHandler) AdminDeduct(w http.ResponseWriter, r *http.Request) {
	h.adminAdjust(w, r, services.AdjustDeduct)
}

func (h *WalletHandler) adminAdjust(w http.ResponseWriter, r *http.Request, direction services.AdjustDirection) {
	organizerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	var input struct {
		UserID int     `json:"user_id"`
		Amount float64 `json:"amount"`
		Reason string  `json:"reason"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	if input.UserID <= 0 {
		badRequestResponse(w, errors.New("user_id is required"))
		return
	}

	if err := h.walletService.AdminAdjust(r.Context(), organizerID, input.UserID, input.Amount, input.Reason, direction); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := successResponse(w, http.StatusOK, jsonResponse{"message": "wallet adjusted"}); err != nil {
		serverErrorResponse(w, r, err)
	}
}
