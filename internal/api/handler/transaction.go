// internal/api/handler/transaction.go
package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/domain"
	"fintrack/internal/service"
	"fintrack/internal/util"
)

// TransactionHandler handles HTTP requests for transactions.
type TransactionHandler struct {
	base
	service service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(svc service.TransactionService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{base: base{logger: logger}, service: svc}
}

// CreateTransactionRequest represents the request body for creating a transaction.
type CreateTransactionRequest struct {
	Amount                *decimal.Decimal `json:"amount" validate:"required"`
	AdminFee              *decimal.Decimal `json:"adminFee"`
	TransactionTypeID     int16            `json:"transactionTypeId" validate:"required,oneof=1 2 3"`
	TransactionCategoryID int64            `json:"transactionCategoryId" validate:"required,gt=0"`
	WalletID              int64            `json:"walletId" validate:"required,gt=0"`
	TargetWalletID        *int64           `json:"targetWalletId" validate:"omitempty,gt=0"`
	CreatedAt             *time.Time       `json:"createdAt"`
}

// UpdateTransactionRequest represents the request body for a partial update.
type UpdateTransactionRequest struct {
	Amount                *decimal.Decimal `json:"amount"`
	AdminFee              *decimal.Decimal `json:"adminFee"`
	TransactionTypeID     *int16           `json:"transactionTypeId" validate:"omitempty,oneof=1 2 3"`
	TransactionCategoryID *int64           `json:"transactionCategoryId" validate:"omitempty,gt=0"`
	WalletID              *int64           `json:"walletId" validate:"omitempty,gt=0"`
	TargetWalletID        *int64           `json:"targetWalletId" validate:"omitempty,gt=0"`
}

// Create handles POST /transactions.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req CreateTransactionRequest
	if err := decode(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	txType, err := domain.TransactionTypeFromID(req.TransactionTypeID)
	if err != nil {
		h.respondWithError(w, fmt.Errorf("%v: %w", err, util.ErrInvalidInput))
		return
	}

	input := service.CreateTransactionInput{
		Amount:         *req.Amount,
		AdminFee:       decimal.Zero,
		Type:           txType,
		CategoryID:     req.TransactionCategoryID,
		WalletID:       req.WalletID,
		TargetWalletID: req.TargetWalletID,
		CreatedAt:      req.CreatedAt,
	}
	if req.AdminFee != nil {
		input.AdminFee = *req.AdminFee
	}

	tx, err := h.service.Create(r.Context(), userID, input)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, "Transaction created", tx)
}

// List handles GET /transactions?page=&limit=&date=YYYY-MM-DD.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	page, err := intQuery(r, "page", 1)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	limit, err := intQuery(r, "limit", 10)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	opts := service.ListTransactionsOptions{Page: page, Limit: limit}
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.respondWithError(w, fmt.Errorf("date must be YYYY-MM-DD: %w", util.ErrInvalidInput))
			return
		}
		opts.Date = &date
	}

	result, err := h.service.FindAll(r.Context(), userID, opts)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, "Transactions retrieved", result)
}

// Get handles GET /transactions/{id}.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	tx, err := h.service.FindOne(r.Context(), userID, id)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, "Transaction retrieved", tx)
}

// Update handles PATCH /transactions/{id}.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req UpdateTransactionRequest
	if err := decode(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	input := service.UpdateTransactionInput{
		Amount:         req.Amount,
		AdminFee:       req.AdminFee,
		CategoryID:     req.TransactionCategoryID,
		WalletID:       req.WalletID,
		TargetWalletID: req.TargetWalletID,
	}
	if req.TransactionTypeID != nil {
		txType, err := domain.TransactionTypeFromID(*req.TransactionTypeID)
		if err != nil {
			h.respondWithError(w, fmt.Errorf("%v: %w", err, util.ErrInvalidInput))
			return
		}
		input.Type = &txType
	}

	tx, err := h.service.Update(r.Context(), userID, id, input)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, "Transaction updated", tx)
}

// Delete handles DELETE /transactions/{id}.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
