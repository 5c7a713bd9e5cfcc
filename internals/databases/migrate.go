package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	attendanceModel "garderie_backend/internals/features/attendance/attendance/model"
	childModel "garderie_backend/internals/features/children/children/model"
	expenseModel "garderie_backend/internals/features/finance/expenses/model"
	paymentModel "garderie_backend/internals/features/finance/payments/model"
	receiptModel "garderie_backend/internals/features/finance/receipts/model"
	menuModel "garderie_backend/internals/features/menus/menus/model"
	authModel "garderie_backend/internals/features/users/auth/model"
	userModel "garderie_backend/internals/features/users/user/model"
)

// Models lists every table owned by the application, in creation order.
func Models() []any {
	return []any{
		&userModel.UserModel{},
		&authModel.TokenBlacklist{},
		&childModel.ChildModel{},
		&attendanceModel.AttendanceModel{},
		&paymentModel.PaymentModel{},
		&expenseModel.ExpenseModel{},
		&receiptModel.ReceiptCounter{},
		&menuModel.MenuModel{},
	}
}

// Migrate creates or updates tables and their unique indexes.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
