package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	attendanceModel "garderie_backend/internals/features/attendance/attendance/model"
	"garderie_backend/internals/features/children/children/dto"
	"garderie_backend/internals/features/children/children/model"
	paymentModel "garderie_backend/internals/features/finance/payments/model"
	helper "garderie_backend/internals/helpers"
	"garderie_backend/internals/helpers/apperr"
	"garderie_backend/internals/helpers/dbtime"
)

const (
	MsgNotFound = "child not found"

	DefaultListLimit       = 10
	MaxListLimit           = 100
	HistoryAttendanceLimit = 30
)

type Service struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Log       *zap.Logger
	Now       func() time.Time
}

func New(db *gorm.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		DB:        db,
		Validator: helper.NewValidator(),
		Log:       log.Named("children"),
		Now:       dbtime.Now,
	}
}

/* =========================================================
   LIST
   ========================================================= */

type ListQuery struct {
	Class       model.ChildClass
	PaymentMode model.PaymentMode
	Search      string
	// IncludeInactive lists soft-deleted children as well.
	IncludeInactive bool
	Page            int
	Limit           int
}

type ListResult struct {
	Items      []dto.ChildResponse
	Pagination helper.Pagination
}

func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	if q.Class != "" && !q.Class.Valid() {
		return nil, apperr.Validation("invalid class")
	}
	if q.PaymentMode != "" && !q.PaymentMode.Valid() {
		return nil, apperr.Validation("invalid payment_mode")
	}
	paging := helper.NewPaging(q.Page, q.Limit, DefaultListLimit, MaxListLimit)

	tx := s.DB.WithContext(ctx).Model(&model.ChildModel{})
	if !q.IncludeInactive {
		tx = tx.Where("is_active = ?", true)
	}
	if q.Class != "" {
		tx = tx.Where("class = ?", q.Class)
	}
	if q.PaymentMode != "" {
		tx = tx.Where("payment_mode = ?", q.PaymentMode)
	}
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		like := "%" + term + "%"
		tx = tx.Where(
			"(LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(parent_name) LIKE ?)",
			like, like, like,
		)
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, apperr.Internal("count children", err)
	}

	var rows []model.ChildModel
	if err := tx.Session(&gorm.Session{}).
		Order("created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return nil, apperr.Internal("list children", err)
	}

	return &ListResult{
		Items:      dto.FromModels(rows, s.Now()),
		Pagination: helper.BuildPaginationFromPage(total, paging.Page, paging.Limit),
	}, nil
}

/* =========================================================
   GET / CREATE
   ========================================================= */

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*dto.ChildResponse, error) {
	m, err := s.find(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModel(m, s.Now())
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, req dto.CreateChildRequest) (*dto.ChildResponse, error) {
	req.Normalize()
	if err := s.Validator.Struct(&req); err != nil {
		return nil, apperr.FromValidator(err)
	}
	now := s.Now()
	m, err := req.ToModel(now)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if m.DateOfBirth.After(now) {
		return nil, apperr.Validation("date_of_birth cannot be in the future")
	}

	if err := s.DB.WithContext(ctx).Create(m).Error; err != nil {
		return nil, apperr.Internal("create child", err)
	}
	s.Log.Info("child enrolled", zap.String("id", m.ID.String()), zap.String("class", string(m.Class)))

	resp := dto.FromModel(m, now)
	return &resp, nil
}

/* =========================================================
   UPDATE (partial)
   ========================================================= */

func (s *Service) Update(ctx context.Context, id uuid.UUID, req dto.UpdateChildRequest) (*dto.ChildResponse, error) {
	var out *dto.ChildResponse
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		updates, err := s.buildUpdates(req)
		if err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(m).Updates(updates).Error; err != nil {
				return apperr.Internal("update child", err)
			}
			if m, err = s.find(ctx, tx, id); err != nil {
				return err
			}
		}
		resp := dto.FromModel(m, s.Now())
		out = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) buildUpdates(req dto.UpdateChildRequest) (map[string]any, error) {
	updates := map[string]any{}

	requiredText := func(col string, f dto.PatchField[string], max int) error {
		v, ok := f.Get()
		if !ok {
			return nil
		}
		if v == nil || strings.TrimSpace(*v) == "" {
			return apperr.ValidationFields("validation failed", map[string][]string{col: {"required"}})
		}
		val := strings.TrimSpace(*v)
		if len(val) > max {
			return apperr.ValidationFields("validation failed", map[string][]string{col: {"max=" + strconv.Itoa(max)}})
		}
		updates[col] = val
		return nil
	}
	optionalText := func(col string, f dto.PatchField[string]) {
		v, ok := f.Get()
		if !ok {
			return
		}
		if v == nil || strings.TrimSpace(*v) == "" {
			updates[col] = nil
			return
		}
		updates[col] = strings.TrimSpace(*v)
	}

	if err := requiredText("first_name", req.FirstName, 80); err != nil {
		return nil, err
	}
	if err := requiredText("last_name", req.LastName, 80); err != nil {
		return nil, err
	}
	if v, ok := req.DateOfBirth.Get(); ok {
		if v == nil {
			return nil, apperr.Validation("date_of_birth is required")
		}
		dob, err := dbtime.ParseDate(*v)
		if err != nil {
			return nil, apperr.Validation("date_of_birth: " + err.Error())
		}
		if dob.After(s.Now()) {
			return nil, apperr.Validation("date_of_birth cannot be in the future")
		}
		updates["date_of_birth"] = dob
	}
	if v, ok := req.Class.Get(); ok {
		if v == nil || !model.ChildClass(strings.ToLower(strings.TrimSpace(*v))).Valid() {
			return nil, apperr.Validation("invalid class")
		}
		updates["class"] = strings.ToLower(strings.TrimSpace(*v))
	}
	if v, ok := req.PaymentMode.Get(); ok {
		if v == nil || !model.PaymentMode(strings.ToLower(strings.TrimSpace(*v))).Valid() {
			return nil, apperr.Validation("invalid payment_mode")
		}
		updates["payment_mode"] = strings.ToLower(strings.TrimSpace(*v))
	}
	if p := req.Parent; p != nil {
		if err := requiredText("parent_name", p.Name, 120); err != nil {
			return nil, err
		}
		if err := requiredText("parent_phone", p.Phone, 32); err != nil {
			return nil, err
		}
		if v, ok := p.Email.Get(); ok && v != nil && strings.TrimSpace(*v) != "" {
			email := strings.ToLower(strings.TrimSpace(*v))
			if err := s.Validator.Var(email, "email"); err != nil {
				return nil, apperr.ValidationFields("validation failed", map[string][]string{"parent_email": {"email"}})
			}
			updates["parent_email"] = email
		} else {
			optionalText("parent_email", p.Email)
		}
		optionalText("parent_address", p.Address)
	}
	if v, ok := req.EnrollmentDate.Get(); ok && v != nil {
		d, err := dbtime.ParseDate(*v)
		if err != nil {
			return nil, apperr.Validation("enrollment_date: " + err.Error())
		}
		updates["enrollment_date"] = d
	}
	optionalText("notes", req.Notes)
	if v, ok := req.IsActive.Get(); ok && v != nil {
		updates["is_active"] = *v
	}
	return updates, nil
}

/* =========================================================
   DELETE (soft)
   ========================================================= */

// Delete deactivates the child; attendance and payments stay referenced.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).
		Model(&model.ChildModel{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return apperr.Internal("delete child", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(MsgNotFound)
	}
	s.Log.Info("child deactivated", zap.String("id", id.String()))
	return nil
}

/* =========================================================
   HISTORY
   ========================================================= */

// History returns every payment of the child and its most recent marks.
func (s *Service) History(ctx context.Context, id uuid.UUID) (*dto.ChildHistory, error) {
	db := s.DB.WithContext(ctx)
	m, err := s.find(ctx, db, id)
	if err != nil {
		return nil, err
	}

	var payments []paymentModel.PaymentModel
	if err := db.Where("child_id = ?", id).Order("payment_date DESC").Find(&payments).Error; err != nil {
		return nil, apperr.Internal("load payments", err)
	}
	var marks []attendanceModel.AttendanceModel
	if err := db.Where("child_id = ?", id).
		Order("date DESC").
		Limit(HistoryAttendanceLimit).
		Find(&marks).Error; err != nil {
		return nil, apperr.Internal("load attendance", err)
	}

	out := &dto.ChildHistory{
		Child:      dto.FromModel(m, s.Now()),
		Payments:   make([]dto.HistoryPayment, 0, len(payments)),
		Attendance: make([]dto.HistoryAttendance, 0, len(marks)),
	}
	for _, p := range payments {
		out.Payments = append(out.Payments, dto.HistoryPayment{
			ID:            p.ID,
			Amount:        p.Amount,
			PaymentDate:   p.PaymentDate,
			PaymentMethod: string(p.PaymentMethod),
			Type:          string(p.Type),
			Period:        p.Period,
			ReceiptNumber: p.ReceiptNumber,
			Status:        string(p.Status),
		})
	}
	for _, a := range marks {
		out.Attendance = append(out.Attendance, dto.HistoryAttendance{
			ID:           a.ID,
			Date:         a.Date,
			CheckInTime:  a.CheckInTime,
			CheckOutTime: a.CheckOutTime,
			Status:       string(a.Status),
		})
	}
	return out, nil
}

func (s *Service) find(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.ChildModel, error) {
	var m model.ChildModel
	if err := db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err, MsgNotFound, "")
	}
	return &m, nil
}
