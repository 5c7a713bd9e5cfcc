package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	childModel "garderie_backend/internals/features/children/children/model"
	"garderie_backend/internals/features/dashboard/dashboard/dto"
	paymentModel "garderie_backend/internals/features/finance/payments/model"
	paymentService "garderie_backend/internals/features/finance/payments/service"
	userModel "garderie_backend/internals/features/users/user/model"
	"garderie_backend/internals/helpers/apperr"
	"garderie_backend/internals/helpers/dbtime"
)

const (
	TrendDays      = 7
	RecentPayments = 5
)

type Service struct {
	DB       *gorm.DB
	Log      *zap.Logger
	Now      func() time.Time
	Payments *paymentService.Service
}

func New(db *gorm.DB, log *zap.Logger, payments *paymentService.Service) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		DB:       db,
		Log:      log.Named("dashboard"),
		Now:      dbtime.Now,
		Payments: payments,
	}
}

type revenue struct {
	Total int64
	Count int64
}

func (s *Service) revenueBetween(ctx context.Context, from, to time.Time) (revenue, error) {
	var r revenue
	err := s.DB.WithContext(ctx).Model(&paymentModel.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("payment_date >= ? AND payment_date < ?", from, to).
		Scan(&r).Error
	return r, err
}

// Stats gathers the dashboard counters. Independent queries run concurrently;
// the first failure cancels the rest.
func (s *Service) Stats(ctx context.Context) (*dto.Stats, error) {
	now := s.Now()
	dayStart, dayEnd := dbtime.DayBounds(now)
	monthStart, monthEnd := dbtime.MonthBounds(now)
	trendStart := dayStart.AddDate(0, 0, -(TrendDays - 1))

	out := &dto.Stats{}
	var trendRows []paymentModel.PaymentModel

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.DB.WithContext(gctx).Model(&childModel.ChildModel{}).
			Where("is_active = ?", true).Count(&out.TotalChildren).Error
	})
	g.Go(func() error {
		return s.DB.WithContext(gctx).Model(&userModel.UserModel{}).
			Where("is_active = ?", true).Count(&out.TotalUsers).Error
	})
	g.Go(func() error {
		r, err := s.revenueBetween(gctx, dayStart, dayEnd)
		out.TodayRevenue, out.TodayPayments = r.Total, r.Count
		return err
	})
	g.Go(func() error {
		r, err := s.revenueBetween(gctx, monthStart, monthEnd)
		out.MonthlyRevenue, out.MonthlyPayments = r.Total, r.Count
		return err
	})
	g.Go(func() error {
		return s.DB.WithContext(gctx).Model(&paymentModel.PaymentModel{}).
			Where("status = ?", paymentModel.StatusOverdue).Count(&out.OverduePayments).Error
	})
	g.Go(func() error {
		var rows []dto.ClassCount
		err := s.DB.WithContext(gctx).Model(&childModel.ChildModel{}).
			Select("class, COUNT(*) AS count").
			Where("is_active = ?", true).
			Group("class").Order("class").
			Scan(&rows).Error
		for i := range rows {
			rows[i].Label = rows[i].Class.Label()
		}
		out.ChildrenByClass = rows
		return err
	})
	g.Go(func() error {
		var rows []dto.MethodRevenue
		err := s.DB.WithContext(gctx).Model(&paymentModel.PaymentModel{}).
			Select("payment_method AS method, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
			Where("payment_date >= ? AND payment_date < ?", monthStart, monthEnd).
			Group("payment_method").Order("payment_method").
			Scan(&rows).Error
		for i := range rows {
			rows[i].Label = rows[i].Method.Label()
		}
		out.RevenueByMethod = rows
		return err
	})
	g.Go(func() error {
		return s.DB.WithContext(gctx).
			Select("amount", "payment_date").
			Where("payment_date >= ? AND payment_date < ?", trendStart, dayEnd).
			Find(&trendRows).Error
	})
	g.Go(func() error {
		recent, err := s.Payments.Recent(gctx, RecentPayments)
		out.RecentPayments = recent
		return err
	})
	if err := g.Wait(); err != nil {
		if _, ok := apperr.As(err); ok {
			return nil, err
		}
		return nil, apperr.Internal("dashboard stats", err)
	}

	out.RevenueTrend = revenueTrend(trendRows, trendStart)
	return out, nil
}

// revenueTrend buckets rows into TrendDays consecutive days from start,
// oldest first, keeping empty days.
func revenueTrend(rows []paymentModel.PaymentModel, start time.Time) []dto.TrendPoint {
	points := make([]dto.TrendPoint, TrendDays)
	index := make(map[string]int, TrendDays)
	for i := 0; i < TrendDays; i++ {
		key := dbtime.BucketKey(start.AddDate(0, 0, i), dbtime.GroupByDay)
		points[i].Date = key
		index[key] = i
	}
	for _, r := range rows {
		if i, ok := index[dbtime.BucketKey(r.PaymentDate, dbtime.GroupByDay)]; ok {
			points[i].Revenue += r.Amount
			points[i].Payments++
		}
	}
	return points
}

type FinancialQuery struct {
	StartDate *time.Time
	EndDate   *time.Time
	GroupBy   dbtime.GroupBy
}

// FinancialReport groups revenue by day, week or month over [start, end].
// Without dates it covers the current month.
func (s *Service) FinancialReport(ctx context.Context, q FinancialQuery) ([]dto.FinancialPeriod, error) {
	if q.GroupBy == "" {
		q.GroupBy = dbtime.GroupByDay
	}
	if !q.GroupBy.Valid() {
		return nil, apperr.Validation("group_by must be one of day, week, month")
	}
	from, to := dbtime.MonthBounds(s.Now())
	if q.StartDate != nil {
		from = dbtime.StartOfDay(*q.StartDate)
	}
	if q.EndDate != nil {
		_, to = dbtime.DayBounds(*q.EndDate)
	}
	if !from.Before(to) {
		return nil, apperr.Validation("start_date must be before end_date")
	}

	var rows []paymentModel.PaymentModel
	if err := s.DB.WithContext(ctx).
		Select("amount", "payment_date", "payment_method").
		Where("payment_date >= ? AND payment_date < ?", from, to).
		Order("payment_date ASC").
		Find(&rows).Error; err != nil {
		return nil, apperr.Internal("financial report", err)
	}

	buckets := map[string]*dto.FinancialPeriod{}
	for _, r := range rows {
		key := dbtime.BucketKey(r.PaymentDate, q.GroupBy)
		b, ok := buckets[key]
		if !ok {
			b = &dto.FinancialPeriod{Period: key, PaymentMethods: map[paymentModel.PaymentMethod]int64{}}
			buckets[key] = b
		}
		b.TotalRevenue += r.Amount
		b.TotalPayments++
		b.PaymentMethods[r.PaymentMethod] += r.Amount
	}

	out := make([]dto.FinancialPeriod, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}
