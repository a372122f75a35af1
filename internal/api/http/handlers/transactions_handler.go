package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/budget-service/internal/api/dto"
	"github.com/spec-kit/budget-service/internal/auth"
	"github.com/spec-kit/budget-service/internal/domain"
	"github.com/spec-kit/budget-service/internal/service"
	apperrors "github.com/spec-kit/budget-service/pkg/util"
)

// TransactionsHandler manages transaction endpoints.
type TransactionsHandler struct {
	service *service.TransactionService
}

// NewTransactionsHandler constructs handler.
func NewTransactionsHandler(transactionService *service.TransactionService) *TransactionsHandler {
	return &TransactionsHandler{service: transactionService}
}

// Create POST /transactions.
func (h *TransactionsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	input, err := parseTransactionRequest(c)
	if err != nil {
		return err
	}

	tx, err := h.service.Create(c.Context(), principal.AccountID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": transactionResponse(tx)})
}

// List GET /transactions.
func (h *TransactionsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	transactions, err := h.service.List(c.Context(), principal.AccountID)
	if err != nil {
		return err
	}
	items := make([]dto.TransactionResponse, 0, len(transactions))
	for i := range transactions {
		items = append(items, transactionResponse(&transactions[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /transactions/:id.
func (h *TransactionsHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	tx, err := h.service.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": transactionResponse(tx)})
}

// Update PATCH /transactions/:id.
func (h *TransactionsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	input, err := parseTransactionRequest(c)
	if err != nil {
		return err
	}

	tx, err := h.service.Update(c.Context(), id, principal.AccountID, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": transactionResponse(tx)})
}

// Delete DELETE /transactions/:id.
func (h *TransactionsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Context(), id, principal.AccountID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseTransactionRequest(c *fiber.Ctx) (service.TransactionInput, error) {
	var req dto.TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return service.TransactionInput{}, apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CategoryID <= 0 {
		return service.TransactionInput{}, apperrors.NewValidationError("categoryId required", nil)
	}
	return service.TransactionInput{
		CategoryID:      req.CategoryID,
		Type:            req.Type,
		Amount:          req.Amount,
		Description:     req.Description,
		TransactionDate: req.TransactionDate,
	}, nil
}

func transactionResponse(tx *domain.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:              tx.ID,
		AccountID:       tx.AccountID,
		CategoryID:      tx.CategoryID,
		Type:            tx.Type,
		Amount:          tx.Amount,
		Description:     tx.Description,
		TransactionDate: tx.TransactionDate,
		CreatedAt:       tx.CreatedAt,
		UpdatedAt:       tx.UpdatedAt,
	}
}
