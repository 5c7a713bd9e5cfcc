package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	childModel "garderie_backend/internals/features/children/children/model"
	paymentModel "garderie_backend/internals/features/finance/payments/model"
	userModel "garderie_backend/internals/features/users/user/model"
)

// CreateUser inserts an active user whose password is "password123".
func CreateUser(t testing.TB, db *gorm.DB, name, email, role string) *userModel.UserModel {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &userModel.UserModel{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateChild inserts an active child in class.
func CreateChild(t testing.TB, db *gorm.DB, firstName string, class childModel.ChildClass) *childModel.ChildModel {
	t.Helper()
	c := &childModel.ChildModel{
		FirstName:      firstName,
		LastName:       "Test",
		DateOfBirth:    time.Date(2021, 5, 10, 0, 0, 0, 0, time.UTC),
		Class:          class,
		PaymentMode:    childModel.PaymentModeMonthly,
		ParentName:     "Parent " + firstName,
		ParentPhone:    "+22890000000",
		IsActive:       true,
		EnrollmentDate: time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

// CreatePaymentRow inserts a payment directly, bypassing numbering.
func CreatePaymentRow(t testing.TB, db *gorm.DB, childID, recorder uuid.UUID, receipt string, amount int64, at time.Time) *paymentModel.PaymentModel {
	t.Helper()
	p := &paymentModel.PaymentModel{
		ChildID:       childID,
		RecordedBy:    recorder,
		Amount:        amount,
		PaymentDate:   at,
		PaymentMethod: paymentModel.MethodCash,
		Type:          paymentModel.TypeDaily,
		ReceiptNumber: receipt,
		Status:        paymentModel.StatusPaid,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}
