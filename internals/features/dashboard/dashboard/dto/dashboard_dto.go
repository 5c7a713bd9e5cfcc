package dto

import (
	childModel "garderie_backend/internals/features/children/children/model"
	paymentDTO "garderie_backend/internals/features/finance/payments/dto"
	paymentModel "garderie_backend/internals/features/finance/payments/model"
)

type ClassCount struct {
	Class childModel.ChildClass `json:"class"`
	Label string                `json:"label"`
	Count int64                 `json:"count"`
}

type MethodRevenue struct {
	Method paymentModel.PaymentMethod `json:"method"`
	Label  string                     `json:"label"`
	Total  int64                      `json:"total"`
	Count  int64                      `json:"count"`
}

type TrendPoint struct {
	Date     string `json:"date"`
	Revenue  int64  `json:"revenue"`
	Payments int64  `json:"payments"`
}

type Stats struct {
	TotalChildren   int64                        `json:"total_children"`
	TotalUsers      int64                        `json:"total_users"`
	TodayRevenue    int64                        `json:"today_revenue"`
	TodayPayments   int64                        `json:"today_payments"`
	MonthlyRevenue  int64                        `json:"monthly_revenue"`
	MonthlyPayments int64                        `json:"monthly_payments"`
	OverduePayments int64                        `json:"overdue_payments"`
	ChildrenByClass []ClassCount                 `json:"children_by_class"`
	RevenueByMethod []MethodRevenue              `json:"revenue_by_method"`
	RevenueTrend    []TrendPoint                 `json:"revenue_trend"`
	RecentPayments  []paymentDTO.PaymentResponse `json:"recent_payments"`
}

// FinancialPeriod is one bucket of the revenue report.
type FinancialPeriod struct {
	Period         string                               `json:"period"`
	TotalRevenue   int64                                `json:"total_revenue"`
	TotalPayments  int64                                `json:"total_payments"`
	PaymentMethods map[paymentModel.PaymentMethod]int64 `json:"payment_methods"`
}
