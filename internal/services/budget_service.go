package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finboard/internal/errors"
	"finboard/internal/finance"
	"finboard/internal/models"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// allocationFromInput normalizes the category of in and validates its
// allocation.
func allocationFromInput(in *BudgetInput) (finance.Allocation, error) {
	category, ok := models.ParseCategory(string(in.Category))
	if !ok {
		return finance.Allocation{}, apperrors.ErrInvalidCategory
	}
	in.Category = category

	alloc, err := finance.NewAllocation(in.Allocated, in.Percentage)
	if err != nil {
		return finance.Allocation{}, apperrors.WithMessage(apperrors.ErrInvalidAllocation, err.Error())
	}
	return alloc, nil
}

// CreateBudget stores the allocation as given. The salary is not read here;
// percentage budgets are resolved whenever they are read.
func (s *budgetService) CreateBudget(userID string, in BudgetInput) (*BudgetView, error) {
	alloc, err := allocationFromInput(&in)
	if err != nil {
		return nil, err
	}

	budget := &models.Budget{
		UserID:          userID,
		Category:        in.Category,
		AllocationKind:  alloc.Kind(),
		AllocationValue: alloc.Value(),
		Color:           in.Color,
		Emoji:           in.Emoji,
	}
	if budget.Emoji == "" {
		budget.Emoji = in.Category.Icon()
	}

	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetBudget(userID, budget.ID)
}

// GetUserBudgets returns every budget of the user with its derived figures.
func (s *budgetService) GetUserBudgets(userID string) ([]BudgetView, error) {
	return s.views(userID, "")
}

// GetBudget returns one budget with its derived figures.
func (s *budgetService) GetBudget(userID, budgetID string) (*BudgetView, error) {
	views, err := s.views(userID, budgetID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// views loads salary, budgets and the matching transactions inside one
// database transaction so every figure is computed from the same state.
// A non-empty budgetID restricts the result to that budget.
func (s *budgetService) views(userID, budgetID string) ([]BudgetView, error) {
	var (
		salary  decimal.Decimal
		budgets []models.Budget
		txns    []models.Transaction
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		salary, err = loadSalary(tx, userID)
		if err != nil {
			return err
		}

		query := tx.Where("user_id = ?", userID)
		if budgetID != "" {
			query = query.Where("id = ?", budgetID)
		}
		if err := query.Order("created_at ASC, id ASC").Find(&budgets).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if budgetID != "" && len(budgets) == 0 {
			return apperrors.ErrBudgetNotFound
		}
		if len(budgets) == 0 {
			return nil
		}

		categories := make([]models.Category, 0, len(budgets))
		for i := range budgets {
			categories = append(categories, budgets[i].Category)
		}
		if err := tx.Where("user_id = ? AND category IN ?", userID, categories).Find(&txns).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	views := make([]BudgetView, 0, len(budgets))
	for i := range budgets {
		views = append(views, BudgetView{
			Budget:       budgets[i],
			BudgetStatus: finance.Evaluate(&budgets[i], salary, txns),
		})
	}
	return views, nil
}

// UpdateBudget replaces the category, allocation and presentation of a budget.
func (s *budgetService) UpdateBudget(userID, budgetID string, in BudgetInput) (*BudgetView, error) {
	alloc, err := allocationFromInput(&in)
	if err != nil {
		return nil, err
	}

	emoji := in.Emoji
	if emoji == "" {
		emoji = in.Category.Icon()
	}

	updates := map[string]interface{}{
		"category":         in.Category,
		"allocation_kind":  alloc.Kind(),
		"allocation_value": alloc.Value(),
		"color":            in.Color,
		"emoji":            emoji,
	}
	result := s.db.Model(&models.Budget{}).Where("id = ? AND user_id = ?", budgetID, userID).Updates(updates)
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrBudgetNotFound
	}
	return s.GetBudget(userID, budgetID)
}

// DeleteBudget removes a budget owned by the user.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	result := s.db.Where("id = ? AND user_id = ?", budgetID, userID).Delete(&models.Budget{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrBudgetNotFound
	}
	return nil
}
