// internal/api/handler/wallet.go
package handler

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"fintrack/internal/service"
)

// WalletHandler handles HTTP requests related to wallet operations.
type WalletHandler struct {
	base
	service service.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc service.WalletService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{base: base{logger: logger}, service: svc}
}

// CreateWalletRequest represents the request body for creating a wallet.
type CreateWalletRequest struct {
	Name    string           `json:"name" validate:"required,max=100"`
	Balance *decimal.Decimal `json:"balance"`
}

// UpdateWalletRequest represents the request body for editing a wallet.
// A balance different from the stored one is booked as a correction.
type UpdateWalletRequest struct {
	Name    *string          `json:"name" validate:"omitempty,max=100"`
	Balance *decimal.Decimal `json:"balance"`
}

// List handles GET /wallets.
func (h *WalletHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	wallets, err := h.service.FindAll(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, "Wallets retrieved", wallets)
}

// Get handles GET /wallets/{id}.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	wallet, err := h.service.FindOne(r.Context(), userID, id)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, "Wallet retrieved", wallet)
}

// Create handles POST /wallets.
func (h *WalletHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req CreateWalletRequest
	if err := decode(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	input := service.CreateWalletInput{Name: req.Name, Balance: decimal.Zero}
	if req.Balance != nil {
		input.Balance = *req.Balance
	}

	wallet, err := h.service.Create(r.Context(), userID, input)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, "Wallet created", wallet)
}

// Update handles PATCH /wallets/{id}.
func (h *WalletHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req UpdateWalletRequest
	if err := decode(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	wallet, err := h.service.Update(r.Context(), userID, id, service.UpdateWalletInput{Name: req.Name, Balance: req.Balance})
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, "Wallet updated", wallet)
}

// Delete handles DELETE /wallets/{id}.
func (h *WalletHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	if err := h.service.Remove(r.Context(), userID, id); err != nil {
		h.respondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
