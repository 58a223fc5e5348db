package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "finboard/internal/errors"
	"finboard/internal/models"
)

type adminService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAdminService creates a new AdminServicer.
func NewAdminService(db *gorm.DB) AdminServicer {
	return &adminService{db: db, now: time.Now}
}

// GetStats counts users, admins, transactions and budgets, plus the users
// created in the last 30 days and since the start of the current month.
func (s *adminService) GetStats() (*AdminStats, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := &AdminStats{}
	counts := []struct {
		dst   *int64
		model interface{}
		where string
		args  []interface{}
	}{
		{&stats.TotalUsers, &models.User{}, "", nil},
		{&stats.TotalAdmins, &models.User{}, "is_admin = ?", []interface{}{true}},
		{&stats.TotalTransactions, &models.Transaction{}, "", nil},
		{&stats.TotalBudgets, &models.Budget{}, "", nil},
		{&stats.NewUsersLast30, &models.User{}, "created_at >= ?", []interface{}{now.AddDate(0, 0, -30)}},
		{&stats.NewUsersThisMonth, &models.User{}, "created_at >= ?", []interface{}{monthStart}},
	}

	for _, c := range counts {
		query := s.db.Model(c.model)
		if c.where != "" {
			query = query.Where(c.where, c.args...)
		}
		if err := query.Count(c.dst).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return stats, nil
}
