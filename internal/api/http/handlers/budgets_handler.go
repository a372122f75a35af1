package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/budget-service/internal/api/dto"
	"github.com/spec-kit/budget-service/internal/auth"
	"github.com/spec-kit/budget-service/internal/domain"
	"github.com/spec-kit/budget-service/internal/service"
	apperrors "github.com/spec-kit/budget-service/pkg/util"
)

// BudgetsHandler manages budget endpoints.
type BudgetsHandler struct {
	service *service.BudgetService
}

// NewBudgetsHandler constructs handler.
func NewBudgetsHandler(budgetService *service.BudgetService) *BudgetsHandler {
	return &BudgetsHandler{service: budgetService}
}

// Create POST /budgets.
func (h *BudgetsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	input, err := parseBudgetRequest(c)
	if err != nil {
		return err
	}

	budget, err := h.service.Create(c.Context(), principal.AccountID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": budgetResponse(budget)})
}

// List GET /budgets.
func (h *BudgetsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	budgets, err := h.service.List(c.Context(), principal.AccountID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": budgetResponses(budgets)})
}

// ListActive GET /budgets/active.
func (h *BudgetsHandler) ListActive(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	budgets, err := h.service.ListActive(c.Context(), principal.AccountID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": budgetResponses(budgets)})
}

// ListByCategory GET /budgets/category/:categoryId.
func (h *BudgetsHandler) ListByCategory(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	categoryID, err := strconv.ParseInt(c.Params("categoryId"), 10, 64)
	if err != nil || categoryID <= 0 {
		return apperrors.NewValidationError("invalid category id", nil)
	}
	budgets, err := h.service.ListByCategory(c.Context(), principal.AccountID, categoryID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": budgetResponses(budgets)})
}

// Get GET /budgets/:id.
func (h *BudgetsHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	budget, err := h.service.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": budgetResponse(budget)})
}

// Update PATCH /budgets/:id.
func (h *BudgetsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	input, err := parseBudgetRequest(c)
	if err != nil {
		return err
	}

	budget, err := h.service.Update(c.Context(), id, principal.AccountID, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": budgetResponse(budget)})
}

// Delete DELETE /budgets/:id.
func (h *BudgetsHandler) Delete(c *fiber.Ctx) error {
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

func parseBudgetRequest(c *fiber.Ctx) (service.BudgetInput, error) {
	var req dto.BudgetRequest
	if err := c.BodyParser(&req); err != nil {
		return service.BudgetInput{}, apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CategoryID <= 0 {
		return service.BudgetInput{}, apperrors.NewValidationError("categoryId required", nil)
	}
	return service.BudgetInput{
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
	}, nil
}

func budgetResponse(budget *domain.Budget) dto.BudgetResponse {
	return dto.BudgetResponse{
		ID:         budget.ID,
		AccountID:  budget.AccountID,
		CategoryID: budget.CategoryID,
		Amount:     budget.Amount,
		StartDate:  budget.StartDate,
		EndDate:    budget.EndDate,
		CreatedAt:  budget.CreatedAt,
		UpdatedAt:  budget.UpdatedAt,
	}
}

func budgetResponses(budgets []domain.Budget) []dto.BudgetResponse {
	items := make([]dto.BudgetResponse, 0, len(budgets))
	for i := range budgets {
		items = append(items, budgetResponse(&budgets[i]))
	}
	return items
}
