// internal/api/handler/category.go
package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"fintrack/internal/domain"
	"fintrack/internal/service"
	"fintrack/internal/util"
)

// CategoryHandler handles HTTP requests for categories and transaction types.
type CategoryHandler struct {
	base
	service service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(svc service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{base: base{logger: logger}, service: svc}
}

type CreateCategoryRequest struct {
	Name              string  `json:"name" validate:"required,max=100"`
	TransactionTypeID int16   `json:"transactionTypeId" validate:"required,oneof=1 2 3"`
	IconName          *string `json:"iconName" validate:"omitempty,max=100"`
}

type UpdateCategoryRequest struct {
	Name              *string `json:"name" validate:"omitempty,max=100"`
	TransactionTypeID *int16  `json:"transactionTypeId" validate:"omitempty,oneof=1 2 3"`
	IconName          *string `json:"iconName" validate:"omitempty,max=100"`
}

func typeFromID(id int16) (domain.TransactionType, error) {
	txType, err := domain.TransactionTypeFromID(id)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, util.ErrInvalidInput)
	}
	return txType, nil
}

// ListTypes handles GET /transaction-types.
func (h *CategoryHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ListTransactionTypes(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, "Transaction types retrieved", types)
}

// List handles GET /transaction-categories?page=&limit=&transactionTypeId=&search=.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
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
	typeID, err := intQuery(r, "transactionTypeId", 0)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	opts := service.ListCategoriesOptions{Page: page, Limit: limit, Search: r.URL.Query().Get("search")}
	if typeID != 0 {
		if opts.Type, err = typeFromID(int16(typeID)); err != nil {
			h.respondWithError(w, err)
			return
		}
	}

	result, err := h.service.FindAll(r.Context(), userID, opts)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, "Categories retrieved", result)
}

// Get handles GET /transaction-categories/{id}.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	category, err := h.service.FindOne(r.Context(), userID, id)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, "Category retrieved", category)
}

// Create handles POST /transaction-categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req CreateCategoryRequest
	if err := decode(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	txType, err := typeFromID(req.TransactionTypeID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	category, err := h.service.Create(r.Context(), userID, service.CreateCategoryInput{Name: req.Name, Type: txType, IconName: req.IconName})
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, "Category created", category)
}

// Update handles PATCH /transaction-categories/{id}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req UpdateCategoryRequest
	if err := decode(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	input := service.UpdateCategoryInput{Name: req.Name, IconName: req.IconName}
	if req.TransactionTypeID != nil {
		txType, err := typeFromID(*req.TransactionTypeID)
		if err != nil {
			h.respondWithError(w, err)
			return
		}
		input.Type = &txType
	}

	category, err := h.service.Update(r.Context(), userID, id, input)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, "Category updated", category)
}

// Delete handles DELETE /transaction-categories/{id}.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
