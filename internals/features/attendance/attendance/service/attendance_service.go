package service

import (
	"context"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"garderie_backend/internals/constants"
	"garderie_backend/internals/features/attendance/attendance/dto"
	"garderie_backend/internals/features/attendance/attendance/model"
	childModel "garderie_backend/internals/features/children/children/model"
	userModel "garderie_backend/internals/features/users/user/model"
	helper "garderie_backend/internals/helpers"
	"garderie_backend/internals/helpers/apperr"
	helperAuth "garderie_backend/internals/helpers/auth"
	"garderie_backend/internals/helpers/dbtime"
)

const (
	MsgAlreadyMarked = "attendance already marked for this child today"
	MsgChildNotFound = "child not found"
	MsgNotFound      = "attendance record not found"

	DefaultListLimit = 50
)

// Service guards the one-mark-per-child-per-day rule. The unique index
// (child_id, date) is authoritative; the pre-insert lookup only produces a
// friendlier error in the common case.
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
		Log:       log.Named("attendance"),
		Now:       dbtime.Now,
	}
}

/* =========================================================
   MARK
   ========================================================= */

func (s *Service) Mark(ctx context.Context, recorder helperAuth.Actor, req dto.MarkAttendanceRequest) (*dto.AttendanceResponse, error) {
	req.Normalize()
	if err := s.Validator.Struct(&req); err != nil {
		return nil, apperr.FromValidator(err)
	}
	childID, _ := uuid.Parse(req.ChildID)
	db := s.DB.WithContext(ctx)

	var child childModel.ChildModel
	if err := db.First(&child, "id = ?", childID).Error; err != nil {
		return nil, apperr.FromStore(err, MsgChildNotFound, "")
	}

	now := s.Now()
	dayStart, dayEnd := dbtime.DayBounds(now)

	var existing int64
	if err := db.Model(&model.AttendanceModel{}).
		Where("child_id = ? AND date >= ? AND date < ?", childID, dayStart, dayEnd).
		Count(&existing).Error; err != nil {
		return nil, apperr.Internal("check attendance", err)
	}
	if existing > 0 {
		return nil, apperr.Conflict(MsgAlreadyMarked, nil)
	}

	rec := &model.AttendanceModel{
		ChildID:     childID,
		RecordedBy:  recorder.ID,
		Date:        dayStart,
		CheckInTime: now,
		Status:      model.StatusPresent,
		Notes:       req.Notes,
	}
	if err := db.Create(rec).Error; err != nil {
		if apperr.IsUniqueViolation(err) {
			// lost the race against a concurrent mark
			return nil, apperr.Conflict(MsgAlreadyMarked, err)
		}
		return nil, apperr.Internal("create attendance", err)
	}

	s.Log.Info("attendance marked",
		zap.String("child_id", childID.String()),
		zap.String("recorded_by", recorder.ID.String()),
		zap.Time("date", dayStart))

	resp := dto.FromModel(rec, &child, s.userName(ctx, recorder.ID, recorder.Name))
	return &resp, nil
}

/* =========================================================
   LIST FOR DAY
   ========================================================= */

type ListQuery struct {
	Date  time.Time
	Class childModel.ChildClass
	Page  int
	Limit int
}

type ListResult struct {
	Items      []dto.AttendanceResponse
	Pagination helper.Pagination
}

// ListForDay pages the day's marks newest first. The class filter is
// applied to the fetched page, so total counts the returned rows while
// total_pages reflects every mark of the day.
func (s *Service) ListForDay(ctx context.Context, q ListQuery) (*ListResult, error) {
	if q.Date.IsZero() {
		q.Date = s.Now()
	}
	if q.Class != "" && !q.Class.Valid() {
		return nil, apperr.Validation("invalid class")
	}
	paging := helper.NewPaging(q.Page, q.Limit, DefaultListLimit, 0)
	dayStart, dayEnd := dbtime.DayBounds(q.Date)
	db := s.DB.WithContext(ctx)

	base := db.Model(&model.AttendanceModel{}).Where("date >= ? AND date < ?", dayStart, dayEnd)

	var dayTotal int64
	if err := base.Session(&gorm.Session{}).Count(&dayTotal).Error; err != nil {
		return nil, apperr.Internal("count attendance", err)
	}

	var rows []model.AttendanceModel
	if err := base.Session(&gorm.Session{}).
		Order("check_in_time DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return nil, apperr.Internal("list attendance", err)
	}

	children, err := s.childrenByID(ctx, rows)
	if err != nil {
		return nil, err
	}
	names, err := s.userNames(ctx, rows)
	if err != nil {
		return nil, err
	}

	items := make([]dto.AttendanceResponse, 0, len(rows))
	for i := range rows {
		child := children[rows[i].ChildID]
		if q.Class != "" && (child == nil || child.Class != q.Class) {
			continue
		}
		items = append(items, dto.FromModel(&rows[i], child, names[rows[i].RecordedBy]))
	}

	totalPages := int((dayTotal + int64(paging.Limit) - 1) / int64(paging.Limit))
	return &ListResult{
		Items: items,
		Pagination: helper.Pagination{
			Page:       paging.Page,
			Limit:      paging.Limit,
			Total:      int64(len(items)),
			TotalPages: totalPages,
			HasNext:    paging.Page < totalPages,
			HasPrev:    paging.Page > 1,
		},
	}, nil
}

/* =========================================================
   ROSTER
   ========================================================= */

// RosterWithPresence lists every active child with today's presence flag.
func (s *Service) RosterWithPresence(ctx context.Context, date time.Time) ([]dto.RosterEntry, error) {
	if date.IsZero() {
		date = s.Now()
	}
	dayStart, dayEnd := dbtime.DayBounds(date)
	db := s.DB.WithContext(ctx)

	var children []childModel.ChildModel
	if err := db.Where("is_active = ?", true).Order("first_name ASC").Find(&children).Error; err != nil {
		return nil, apperr.Internal("list children", err)
	}

	var presentIDs []uuid.UUID
	if err := db.Model(&model.AttendanceModel{}).
		Where("date >= ? AND date < ?", dayStart, dayEnd).
		Pluck("child_id", &presentIDs).Error; err != nil {
		return nil, apperr.Internal("list attendance", err)
	}
	present := make(map[uuid.UUID]struct{}, len(presentIDs))
	for _, id := range presentIDs {
		present[id] = struct{}{}
	}

	out := make([]dto.RosterEntry, 0, len(children))
	for _, c := range children {
		_, ok := present[c.ID]
		out = append(out, dto.RosterEntry{
			ID:        c.ID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Class:     c.Class,
			IsPresent: ok,
		})
	}
	return out, nil
}

/* =========================================================
   STATS
   ========================================================= */

var weekdayNames = [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func (s *Service) Stats(ctx context.Context, date time.Time) (*dto.AttendanceStats, error) {
	if date.IsZero() {
		date = s.Now()
	}
	dayStart, dayEnd := dbtime.DayBounds(date)
	db := s.DB.WithContext(ctx)

	out := &dto.AttendanceStats{Date: dbtime.BucketKey(dayStart, dbtime.GroupByDay)}

	if err := db.Model(&model.AttendanceModel{}).
		Where("date >= ? AND date < ?", dayStart, dayEnd).
		Count(&out.TotalPresent).Error; err != nil {
		return nil, apperr.Internal("count attendance", err)
	}
	if err := db.Model(&childModel.ChildModel{}).
		Where("is_active = ?", true).
		Count(&out.TotalChildren).Error; err != nil {
		return nil, apperr.Internal("count children", err)
	}
	if out.TotalChildren > out.TotalPresent {
		out.AbsentCount = out.TotalChildren - out.TotalPresent
	}
	if out.TotalChildren > 0 {
		rate := float64(out.TotalPresent) / float64(out.TotalChildren) * 100
		out.AttendanceRate = math.Round(rate*10) / 10
	}

	out.AttendanceByClass = []dto.ClassCount{}
	if err := db.Table("attendances").
		Select("children.class AS class, COUNT(*) AS count").
		Joins("JOIN children ON children.id = attendances.child_id").
		Where("attendances.date >= ? AND attendances.date < ?", dayStart, dayEnd).
		Group("children.class").
		Order("children.class").
		Scan(&out.AttendanceByClass).Error; err != nil {
		return nil, apperr.Internal("attendance by class", err)
	}

	weekStart, weekEnd := dbtime.WeekBounds(date)
	var dates []time.Time
	if err := db.Model(&model.AttendanceModel{}).
		Where("date >= ? AND date < ?", weekStart, weekEnd).
		Pluck("date", &dates).Error; err != nil {
		return nil, apperr.Internal("weekly attendance", err)
	}
	perDay := make(map[string]int64, 7)
	for _, d := range dates {
		perDay[dbtime.BucketKey(d, dbtime.GroupByDay)]++
	}
	out.WeeklyStats = make([]dto.DayCount, 0, 7)
	for i := 0; i < 7; i++ {
		key := dbtime.BucketKey(weekStart.AddDate(0, 0, i), dbtime.GroupByDay)
		out.WeeklyStats = append(out.WeeklyStats, dto.DayCount{Date: key, Day: weekdayNames[i], Count: perDay[key]})
	}
	return out, nil
}

/* =========================================================
   UPDATE / DELETE (privileged)
   ========================================================= */

func (s *Service) Update(ctx context.Context, actor helperAuth.Actor, id uuid.UUID, req dto.UpdateAttendanceRequest) (*dto.AttendanceResponse, error) {
	if !actor.Can(constants.CapManageAttendance) {
		return nil, apperr.Forbidden(constants.CapabilityError("modify attendance records"))
	}
	req.Normalize()
	if err := s.Validator.Struct(&req); err != nil {
		return nil, apperr.FromValidator(err)
	}
	db := s.DB.WithContext(ctx)

	var rec model.AttendanceModel
	if err := db.First(&rec, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err, MsgNotFound, "")
	}

	updates := map[string]any{}
	if req.CheckOutTime != nil {
		if req.CheckOutTime.Before(rec.CheckInTime) {
			return nil, apperr.Validation("check_out_time must be after check_in_time")
		}
		updates["check_out_time"] = req.CheckOutTime.UTC()
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.Status != nil {
		status := model.AttendanceStatus(*req.Status)
		if !status.Valid() {
			return nil, apperr.Validation("invalid status")
		}
		updates["status"] = status
	}
	if len(updates) > 0 {
		if err := db.Model(&rec).Updates(updates).Error; err != nil {
			return nil, apperr.Internal("update attendance", err)
		}
		if err := db.First(&rec, "id = ?", id).Error; err != nil {
			return nil, apperr.FromStore(err, MsgNotFound, "")
		}
	}

	var child childModel.ChildModel
	childPtr := &child
	if err := db.First(&child, "id = ?", rec.ChildID).Error; err != nil {
		childPtr = nil
	}
	resp := dto.FromModel(&rec, childPtr, s.userName(ctx, rec.RecordedBy, ""))
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, actor helperAuth.Actor, id uuid.UUID) error {
	if !actor.Can(constants.CapManageAttendance) {
		return apperr.Forbidden(constants.CapabilityError("delete attendance records"))
	}
	res := s.DB.WithContext(ctx).Delete(&model.AttendanceModel{}, "id = ?", id)
	if res.Error != nil {
		return apperr.Internal("delete attendance", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(MsgNotFound)
	}
	s.Log.Info("attendance deleted", zap.String("id", id.String()), zap.String("by", actor.ID.String()))
	return nil
}

/* =========================================================
   Small helpers
   ========================================================= */

func (s *Service) userName(ctx context.Context, id uuid.UUID, fallback string) string {
	var u userModel.UserModel
	if err := s.DB.WithContext(ctx).Select("id", "name").First(&u, "id = ?", id).Error; err != nil {
		return fallback
	}
	return u.Name
}

func (s *Service) childrenByID(ctx context.Context, rows []model.AttendanceModel) (map[uuid.UUID]*childModel.ChildModel, error) {
	out := make(map[uuid.UUID]*childModel.ChildModel, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ChildID)
	}
	var children []childModel.ChildModel
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&children).Error; err != nil {
		return nil, apperr.Internal("load children", err)
	}
	for i := range children {
		out[children[i].ID] = &children[i]
	}
	return out, nil
}

func (s *Service) userNames(ctx context.Context, rows []model.AttendanceModel) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.RecordedBy)
	}
	var users []userModel.UserModel
	if err := s.DB.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, apperr.Internal("load recorders", err)
	}
	for _, u := range users {
		out[u.ID] = u.Name
	}
	return out, nil
}
