package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	childModel "garderie_backend/internals/features/children/children/model"
	"garderie_backend/internals/features/finance/payments/dto"
	"garderie_backend/internals/features/finance/payments/model"
	receiptService "garderie_backend/internals/features/finance/receipts/service"
	userModel "garderie_backend/internals/features/users/user/model"
	helper "garderie_backend/internals/helpers"
	"garderie_backend/internals/helpers/apperr"
	helperAuth "garderie_backend/internals/helpers/auth"
	"garderie_backend/internals/helpers/dbtime"
)

const (
	MsgNotFound       = "payment not found"
	MsgChildNotFound  = "child not found"
	MsgReceiptTaken   = "receipt number already taken, please retry"
	MsgPeriodRequired = "period is required for monthly and quarterly payments"

	DefaultListLimit = 10
	MaxListLimit     = 100
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
		Log:       log.Named("payments"),
		Now:       dbtime.Now,
		Allocator: alloc,
		Receipts:  receipts,
	}
}

/* =========================================================
   CREATE
   ========================================================= */

// Create numbers and stores a payment in one transaction. A receipt number
// collision surfaces as a retryable Conflict; it is not retried here.
func (s *Service) Create(ctx context.Context, recorder helperAuth.Actor, req dto.CreatePaymentRequest) (*dto.PaymentResponse, error) {
	req.Normalize()
	if err := s.Validator.Struct(&req); err != nil {
		return nil, apperr.FromValidator(err)
	}
	typ := model.PaymentType(req.Type)
	if typ.RequiresPeriod() && req.Period == nil {
		return nil, apperr.ValidationFields(MsgPeriodRequired, map[string][]string{"period": {"required"}})
	}

	now := s.Now()
	paidAt := now
	if req.PaymentDate != nil {
		d, err := dbtime.ParseDate(*req.PaymentDate)
		if err != nil {
			return nil, apperr.Validation("payment_date: " + err.Error())
		}
		paidAt = d
	}
	status := model.StatusPaid
	if req.Status != nil {
		status = model.PaymentStatus(*req.Status)
	}
	childID, _ := uuid.Parse(req.ChildID)

	var (
		rec   *model.PaymentModel
		child childModel.ChildModel
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&child, "id = ?", childID).Error; err != nil {
			return apperr.FromStore(err, MsgChildNotFound, "")
		}
		number, err := s.Allocator.Next(ctx, tx, receiptService.KindPayment, now)
		if err != nil {
			return apperr.Internal("allocate receipt number", err)
		}
		rec = &model.PaymentModel{
			ChildID:       childID,
			RecordedBy:    recorder.ID,
			Amount:        *req.Amount,
			PaymentDate:   paidAt,
			PaymentMethod: model.PaymentMethod(req.PaymentMethod),
			Type:          typ,
			Period:        req.Period,
			ReceiptNumber: number,
			Status:        status,
			Notes:         req.Notes,
		}
		if err := tx.Create(rec).Error; err != nil {
			if apperr.IsUniqueViolation(err) {
				return apperr.RetryableConflict(MsgReceiptTaken, err)
			}
			return apperr.Internal("create payment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("payment recorded",
		zap.String("receipt_number", rec.ReceiptNumber),
		zap.String("child_id", childID.String()),
		zap.Int64("amount", rec.Amount))

	resp := dto.FromModel(rec, &child, recorder.Name)
	return &resp, nil
}

/* =========================================================
   LIST
   ========================================================= */

type ListQuery struct {
	StartDate *time.Time
	EndDate   *time.Time
	Type      model.PaymentType
	Status    model.PaymentStatus
	ChildID   *uuid.UUID
	Page      int
	Limit     int
}

type ListResult struct {
	Items      []dto.PaymentResponse
	Pagination helper.Pagination
}

// List filters by payment day; EndDate is inclusive of its whole day.
func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	if q.Type != "" && !q.Type.Valid() {
		return nil, apperr.Validation("invalid type")
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperr.Validation("invalid status")
	}
	paging := helper.NewPaging(q.Page, q.Limit, DefaultListLimit, MaxListLimit)

	tx := s.DB.WithContext(ctx).Model(&model.PaymentModel{})
	if q.StartDate != nil {
		tx = tx.Where("payment_date >= ?", dbtime.StartOfDay(*q.StartDate))
	}
	if q.EndDate != nil {
		_, end := dbtime.DayBounds(*q.EndDate)
		tx = tx.Where("payment_date < ?", end)
	}
	if q.Type != "" {
		tx = tx.Where("type = ?", q.Type)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.ChildID != nil {
		tx = tx.Where("child_id = ?", *q.ChildID)
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, apperr.Internal("count payments", err)
	}
	var rows []model.PaymentModel
	if err := tx.Session(&gorm.Session{}).
		Order("payment_date DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return nil, apperr.Internal("list payments", err)
	}

	items, err := s.hydrate(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Items:      items,
		Pagination: helper.BuildPaginationFromPage(total, paging.Page, paging.Limit),
	}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*dto.PaymentResponse, error) {
	var m model.PaymentModel
	if err := s.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err, MsgNotFound, "")
	}
	items, err := s.hydrate(ctx, []model.PaymentModel{m})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// Recent returns the last n recorded payments, newest first.
func (s *Service) Recent(ctx context.Context, n int) ([]dto.PaymentResponse, error) {
	var rows []model.PaymentModel
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Limit(n).Find(&rows).Error; err != nil {
		return nil, apperr.Internal("recent payments", err)
	}
	return s.hydrate(ctx, rows)
}

/* =========================================================
   DAILY REPORT
   ========================================================= */

func (s *Service) DailyReport(ctx context.Context, date time.Time) (*dto.DailyReport, error) {
	if date.IsZero() {
		date = s.Now()
	}
	dayStart, dayEnd := dbtime.DayBounds(date)
	db := s.DB.WithContext(ctx)
	inDay := func() *gorm.DB {
		return db.Model(&model.PaymentModel{}).Where("payment_date >= ? AND payment_date < ?", dayStart, dayEnd)
	}

	out := &dto.DailyReport{
		Date:     dbtime.BucketKey(dayStart, dbtime.GroupByDay),
		ByMethod: []dto.MethodTotal{},
		ByType:   []dto.TypeTotal{},
	}
	if err := inDay().
		Select("payment_method AS method, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Group("payment_method").Order("payment_method").
		Scan(&out.ByMethod).Error; err != nil {
		return nil, apperr.Internal("payments by method", err)
	}
	if err := inDay().
		Select("type AS type, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Group("type").Order("type").
		Scan(&out.ByType).Error; err != nil {
		return nil, apperr.Internal("payments by type", err)
	}
	for _, m := range out.ByMethod {
		out.TotalAmount += m.Total
		out.Count += m.Count
	}

	var rows []model.PaymentModel
	if err := inDay().Order("payment_date DESC").Find(&rows).Error; err != nil {
		return nil, apperr.Internal("list payments", err)
	}
	items, err := s.hydrate(ctx, rows)
	if err != nil {
		return nil, err
	}
	out.Payments = items
	return out, nil
}

/* =========================================================
   RECEIPT
   ========================================================= */

// Receipt renders the payment's PDF receipt and its download file name.
func (s *Service) Receipt(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	if s.Receipts == nil {
		return nil, "", apperr.Internal("receipt renderer not configured", nil)
	}
	db := s.DB.WithContext(ctx)
	var p model.PaymentModel
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		return nil, "", apperr.FromStore(err, MsgNotFound, "")
	}
	var child childModel.ChildModel
	if err := db.First(&child, "id = ?", p.ChildID).Error; err != nil {
		return nil, "", apperr.FromStore(err, MsgChildNotFound, "")
	}

	data := receiptService.PaymentReceipt{
		ReceiptNumber: p.ReceiptNumber,
		PaymentDate:   p.PaymentDate,
		ChildName:     child.FullName(),
		ClassLabel:    child.Class.Label(),
		ParentName:    child.ParentName,
		Amount:        p.Amount,
		MethodLabel:   p.PaymentMethod.Label(),
		TypeLabel:     p.Type.Label(),
		Status:        string(p.Status),
		RecordedBy:    s.userName(ctx, p.RecordedBy),
	}
	if p.Period != nil {
		data.Period = *p.Period
	}
	if p.Notes != nil {
		data.Notes = *p.Notes
	}
	pdf, err := s.Receipts.PaymentPDF(ctx, data)
	if err != nil {
		return nil, "", apperr.Internal("generate receipt", err)
	}
	return pdf, receiptService.FileName(p.ReceiptNumber), nil
}

/* =========================================================
   Small helpers
   ========================================================= */

func (s *Service) userName(ctx context.Context, id uuid.UUID) string {
	var u userModel.UserModel
	if err := s.DB.WithContext(ctx).Select("id", "name").First(&u, "id = ?", id).Error; err != nil {
		return ""
	}
	return u.Name
}

// hydrate attaches child summaries and recorder names in two queries.
func (s *Service) hydrate(ctx context.Context, rows []model.PaymentModel) ([]dto.PaymentResponse, error) {
	out := make([]dto.PaymentResponse, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	childIDs := make([]uuid.UUID, 0, len(rows))
	userIDs := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		childIDs = append(childIDs, r.ChildID)
		userIDs = append(userIDs, r.RecordedBy)
	}
	db := s.DB.WithContext(ctx)

	var children []childModel.ChildModel
	if err := db.Where("id IN ?", childIDs).Find(&children).Error; err != nil {
		return nil, apperr.Internal("load children", err)
	}
	byChild := make(map[uuid.UUID]*childModel.ChildModel, len(children))
	for i := range children {
		byChild[children[i].ID] = &children[i]
	}

	var users []userModel.UserModel
	if err := db.Select("id", "name").Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, apperr.Internal("load recorders", err)
	}
	names := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	for i := range rows {
		out = append(out, dto.FromModel(&rows[i], byChild[rows[i].ChildID], names[rows[i].RecordedBy]))
	}
	return out, nil
}
