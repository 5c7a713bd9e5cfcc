package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"garderie_backend/internals/constants"
	"garderie_backend/internals/features/finance/expenses/dto"
	"garderie_backend/internals/features/finance/expenses/model"
	receiptService "garderie_backend/internals/features/finance/receipts/service"
	userModel "garderie_backend/internals/features/users/user/model"
	helper "garderie_backend/internals/helpers"
	"garderie_backend/internals/helpers/apperr"
	helperAuth "garderie_backend/internals/helpers/auth"
	"garderie_backend/internals/helpers/dbtime"
)

const (
	MsgNotFound       = "expense not found"
	MsgReceiptTaken   = "receipt number already taken, please retry"
	MsgReviewOnly     = "only administrators can change the status or notes of an expense"
	MsgOwnExpenseOnly = "you can only modify your own expenses"

	DefaultListLimit = 10
	MaxListLimit     = 100
	TrendDays        = 7
)

type Service struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Log       *zap.Logger
	Now       func() time.Time
	Allocator *receiptService.Allocator
	Receipts  *receiptService.Renderer
}

func New(db *gorm.DB, log *zap.Logger, alloc *receiptService.Allocator, receipts *receiptService.Renderer) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if alloc == nil {
		alloc = receiptService.NewAllocator(receiptService.StrategyCounter)
	}
	return &Service{
		DB:        db,
		Validator: helper.NewValidator(),
		Log:       log.Named("expenses"),
		Now:       dbtime.Now,
		Allocator: alloc,
		Receipts:  receipts,
	}
}

/* =========================================================
   CREATE
   ========================================================= */

// Create files a pending expense numbered EXP-YYYYMMDD-NNNN.
func (s *Service) Create(ctx context.Context, actor helperAuth.Actor, req dto.CreateExpenseRequest) (*dto.ExpenseResponse, error) {
	req.Normalize()
	if err := s.Validator.Struct(&req); err != nil {
		return nil, apperr.FromValidator(err)
	}
	now := s.Now()
	spentAt := now
	if req.Date != nil {
		d, err := dbtime.ParseDate(*req.Date)
		if err != nil {
			return nil, apperr.Validation("date: " + err.Error())
		}
		spentAt = d
	}

	var rec *model.ExpenseModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.Allocator.Next(ctx, tx, receiptService.KindExpense, now)
		if err != nil {
			return apperr.Internal("allocate receipt number", err)
		}
		rec = &model.ExpenseModel{
			CreatedBy:     actor.ID,
			Title:         model.ExpenseTitle(req.Title),
			Description:   req.Description,
			Amount:        *req.Amount,
			Date:          spentAt,
			ReceiptNumber: number,
			Status:        model.StatusPending,
			Notes:         req.Notes,
		}
		if err := tx.Create(rec).Error; err != nil {
			if apperr.IsUniqueViolation(err) {
				return apperr.RetryableConflict(MsgReceiptTaken, err)
			}
			return apperr.Internal("create expense", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("expense recorded",
		zap.String("receipt_number", rec.ReceiptNumber),
		zap.String("title", string(rec.Title)),
		zap.Int64("amount", rec.Amount))

	resp := dto.FromModel(rec, dto.CreatorSummary{Name: actor.Name, Role: actor.Role})
	return &resp, nil
}

/* =========================================================
   LIST / GET
   ========================================================= */

type ListQuery struct {
	StartDate *time.Time
	EndDate   *time.Time
	Title     model.ExpenseTitle
	Status    model.ExpenseStatus
	Page      int
	Limit     int
}

type ListResult struct {
	Items      []dto.ExpenseResponse
	Pagination helper.Pagination
}

func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	if q.Title != "" && !q.Title.Valid() {
		return nil, apperr.Validation("invalid title")
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperr.Validation("invalid status")
	}
	paging := helper.NewPaging(q.Page, q.Limit, DefaultListLimit, MaxListLimit)

	tx := s.DB.WithContext(ctx).Model(&model.ExpenseModel{})
	if q.StartDate != nil {
		tx = tx.Where("date >= ?", dbtime.StartOfDay(*q.StartDate))
	}
	if q.EndDate != nil {
		_, end := dbtime.DayBounds(*q.EndDate)
		tx = tx.Where("date < ?", end)
	}
	if q.Title != "" {
		tx = tx.Where("title = ?", q.Title)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, apperr.Internal("count expenses", err)
	}
	var rows []model.ExpenseModel
	if err := tx.Session(&gorm.Session{}).
		Order("created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return nil, apperr.Internal("list expenses", err)
	}

	creators, err := s.creators(ctx, rows)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ExpenseResponse, 0, len(rows))
	for i := range rows {
		items = append(items, dto.FromModel(&rows[i], creators[rows[i].CreatedBy]))
	}
	return &ListResult{
		Items:      items,
		Pagination: helper.BuildPaginationFromPage(total, paging.Page, paging.Limit),
	}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*dto.ExpenseResponse, error) {
	m, err := s.find(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModel(m, s.creator(ctx, m.CreatedBy))
	return &resp, nil
}

/* =========================================================
   UPDATE / DELETE
   ========================================================= */

// Update edits an expense. Status and notes need the approve capability;
// other fields belong to the creator unless the actor manages any expense.
func (s *Service) Update(ctx context.Context, actor helperAuth.Actor, id uuid.UUID, req dto.UpdateExpenseRequest) (*dto.ExpenseResponse, error) {
	req.Normalize()
	if req.TouchesReview() && !actor.Can(constants.CapApproveExpenses) {
		return nil, apperr.Forbidden(MsgReviewOnly)
	}
	if err := s.Validator.Struct(&req); err != nil {
		return nil, apperr.FromValidator(err)
	}
	if req.Description != nil && *req.Description == "" {
		return nil, apperr.ValidationFields("validation failed", map[string][]string{"description": {"required"}})
	}

	var out *model.ExpenseModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		if req.TouchesContent() && m.CreatedBy != actor.ID && !actor.Can(constants.CapManageAnyExpense) {
			return apperr.Forbidden(MsgOwnExpenseOnly)
		}

		updates := map[string]any{}
		if req.Title != nil {
			updates["title"] = *req.Title
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Amount != nil {
			updates["amount"] = *req.Amount
		}
		if req.Date != nil {
			d, err := dbtime.ParseDate(*req.Date)
			if err != nil {
				return apperr.Validation("date: " + err.Error())
			}
			updates["date"] = d
		}
		if req.Status != nil {
			updates["status"] = *req.Status
		}
		if req.Notes != nil {
			if *req.Notes == "" {
				updates["notes"] = nil
			} else {
				updates["notes"] = *req.Notes
			}
		}
		if len(updates) > 0 {
			if err := tx.Model(m).Updates(updates).Error; err != nil {
				return apperr.Internal("update expense", err)
			}
			if m, err = s.find(ctx, tx, id); err != nil {
				return err
			}
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	if req.Status != nil {
		s.Log.Info("expense reviewed",
			zap.String("id", id.String()),
			zap.String("status", *req.Status),
			zap.String("by", actor.ID.String()))
	}
	resp := dto.FromModel(out, s.creator(ctx, out.CreatedBy))
	return &resp, nil
}

// Delete removes an expense; only its creator or an administrator may.
func (s *Service) Delete(ctx context.Context, actor helperAuth.Actor, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		if m.CreatedBy != actor.ID && !actor.Can(constants.CapManageAnyExpense) {
			return apperr.Forbidden("you can only delete your own expenses")
		}
		if err := tx.Delete(&model.ExpenseModel{}, "id = ?", id).Error; err != nil {
			return apperr.Internal("delete expense", err)
		}
		s.Log.Info("expense deleted", zap.String("id", id.String()), zap.String("by", actor.ID.String()))
		return nil
	})
}

/* =========================================================
   STATS
   ========================================================= */

type datedAmount struct {
	Date   time.Time
	Amount int64
}

func (s *Service) Stats(ctx context.Context) (*dto.ExpenseStats, error) {
	now := s.Now()
	db := s.DB.WithContext(ctx)
	todayStart, todayEnd := dbtime.DayBounds(now)
	monthStart, monthEnd := dbtime.MonthBounds(now)

	out := &dto.ExpenseStats{
		ExpensesByCategory: []dto.CategoryTotal{},
		ExpensesByStatus:   []dto.StatusCount{},
	}

	sumRange := func(from, to time.Time, total, count *int64) error {
		var agg struct {
			Total int64
			Count int64
		}
		if err := db.Model(&model.ExpenseModel{}).
			Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
			Where("date >= ? AND date < ?", from, to).
			Scan(&agg).Error; err != nil {
			return err
		}
		*total, *count = agg.Total, agg.Count
		return nil
	}
	if err := sumRange(todayStart, todayEnd, &out.TodayTotal, &out.TodayCount); err != nil {
		return nil, apperr.Internal("today expenses", err)
	}
	if err := sumRange(monthStart, monthEnd, &out.MonthlyTotal, &out.MonthlyCount); err != nil {
		return nil, apperr.Internal("monthly expenses", err)
	}

	if err := db.Model(&model.ExpenseModel{}).
		Select("title, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("date >= ? AND date < ?", monthStart, monthEnd).
		Group("title").Order("title").
		Scan(&out.ExpensesByCategory).Error; err != nil {
		return nil, apperr.Internal("expenses by category", err)
	}
	if err := db.Model(&model.ExpenseModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").Order("status").
		Scan(&out.ExpensesByStatus).Error; err != nil {
		return nil, apperr.Internal("expenses by status", err)
	}

	trendStart := todayStart.AddDate(0, 0, -(TrendDays - 1))
	var rows []datedAmount
	if err := db.Model(&model.ExpenseModel{}).
		Select("date, amount").
		Where("date >= ? AND date < ?", trendStart, todayEnd).
		Scan(&rows).Error; err != nil {
		return nil, apperr.Internal("expense trend", err)
	}
	byDay := make(map[string]*dto.DayTotal, TrendDays)
	out.ExpenseTrend = make([]dto.DayTotal, TrendDays)
	for i := 0; i < TrendDays; i++ {
		out.ExpenseTrend[i].Date = dbtime.BucketKey(trendStart.AddDate(0, 0, i), dbtime.GroupByDay)
		byDay[out.ExpenseTrend[i].Date] = &out.ExpenseTrend[i]
	}
	for _, r := range rows {
		if d := byDay[dbtime.BucketKey(r.Date, dbtime.GroupByDay)]; d != nil {
			d.Amount += r.Amount
			d.Count++
		}
	}
	return out, nil
}

/* =========================================================
   REPORT
   ========================================================= */

type ReportQuery struct {
	StartDate *time.Time
	EndDate   *time.Time
	GroupBy   dbtime.GroupBy
}

// Report sums approved expenses per period, oldest period first. The range
// defaults to the current month and EndDate covers its whole day.
func (s *Service) Report(ctx context.Context, q ReportQuery) ([]dto.ReportPeriod, error) {
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
		return nil, apperr.Validation("start_date must not be after end_date")
	}

	var rows []model.ExpenseModel
	if err := s.DB.WithContext(ctx).
		Select("date", "amount", "title").
		Where("status = ? AND date >= ? AND date < ?", model.StatusApproved, from, to).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, apperr.Internal("expense report", err)
	}

	buckets := map[string]*dto.ReportPeriod{}
	for _, r := range rows {
		key := dbtime.BucketKey(r.Date, q.GroupBy)
		b, ok := buckets[key]
		if !ok {
			b = &dto.ReportPeriod{Period: key, ExpensesByCategory: map[model.ExpenseTitle]int64{}}
			buckets[key] = b
		}
		b.TotalExpenses += r.Amount
		b.TotalCount++
		b.ExpensesByCategory[r.Title] += r.Amount
	}

	out := make([]dto.ReportPeriod, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

/* =========================================================
   RECEIPT
   ========================================================= */

func (s *Service) Receipt(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	if s.Receipts == nil {
		return nil, "", apperr.Internal("receipt renderer not configured", nil)
	}
	m, err := s.find(ctx, s.DB, id)
	if err != nil {
		return nil, "", err
	}
	data := receiptService.ExpenseReceipt{
		ReceiptNumber: m.ReceiptNumber,
		Date:          m.Date,
		TitleLabel:    m.Title.Label(),
		Description:   m.Description,
		Amount:        m.Amount,
		Status:        string(m.Status),
		CreatedBy:     s.creator(ctx, m.CreatedBy).Name,
	}
	if m.Notes != nil {
		data.Notes = *m.Notes
	}
	pdf, err := s.Receipts.ExpensePDF(ctx, data)
	if err != nil {
		return nil, "", apperr.Internal("generate receipt", err)
	}
	return pdf, receiptService.FileName(m.ReceiptNumber), nil
}

/* =========================================================
   Small helpers
   ========================================================= */

func (s *Service) find(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.ExpenseModel, error) {
	var m model.ExpenseModel
	if err := db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err, MsgNotFound, "")
	}
	return &m, nil
}

func (s *Service) creator(ctx context.Context, id uuid.UUID) dto.CreatorSummary {
	var u userModel.UserModel
	if err := s.DB.WithContext(ctx).Select("id", "name", "role").First(&u, "id = ?", id).Error; err != nil {
		return dto.CreatorSummary{ID: id}
	}
	return dto.CreatorSummary{ID: u.ID, Name: u.Name, Role: u.Role}
}

func (s *Service) creators(ctx context.Context, rows []model.ExpenseModel) (map[uuid.UUID]dto.CreatorSummary, error) {
	out := make(map[uuid.UUID]dto.CreatorSummary, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.CreatedBy)
	}
	var users []userModel.UserModel
	if err := s.DB.WithContext(ctx).Select("id", "name", "role").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, apperr.Internal("load creators", err)
	}
	for _, u := range users {
		out[u.ID] = dto.CreatorSummary{ID: u.ID, Name: u.Name, Role: u.Role}
	}
	return out, nil
}
