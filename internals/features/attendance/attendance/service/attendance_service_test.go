package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"garderie_backend/internals/constants"
	"garderie_backend/internals/features/attendance/attendance/dto"
	"garderie_backend/internals/features/attendance/attendance/model"
	childModel "garderie_backend/internals/features/children/children/model"
	"garderie_backend/internals/helpers/apperr"
	helperAuth "garderie_backend/internals/helpers/auth"
	"garderie_backend/internals/testutil"
)

type fixture struct {
	db    *gorm.DB
	svc   *Service
	admin helperAuth.Actor
	staff helperAuth.Actor
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	admin := testutil.CreateUser(t, db, "Admin", "admin@garderie.test", constants.RoleAdmin)
	staff := testutil.CreateUser(t, db, "Tata Ama", "ama@garderie.test", constants.RoleStaff)
	svc := New(db, nil)
	svc.Now = func() time.Time { return now }
	return &fixture{
		db:    db,
		svc:   svc,
		admin: helperAuth.Actor{ID: admin.ID, Name: admin.Name, Role: admin.Role},
		staff: helperAuth.Actor{ID: staff.ID, Name: staff.Name, Role: staff.Role},
	}
}

func (f *fixture) mark(t *testing.T, child *childModel.ChildModel) (*dto.AttendanceResponse, error) {
	t.Helper()
	return f.svc.Mark(context.Background(), f.staff, dto.MarkAttendanceRequest{ChildID: child.ID.String()})
}

var mar1 = time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)

func TestMarkOncePerDay(t *testing.T) {
	f := newFixture(t, mar1)
	c1 := testutil.CreateChild(t, f.db, "Awa", childModel.ClassPetiteSection)

	rec, err := f.mark(t, c1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPresent, rec.Status)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), rec.Date.UTC())
	assert.Equal(t, mar1, rec.CheckInTime)
	require.NotNil(t, rec.Child)
	assert.Equal(t, "Awa", rec.Child.FirstName)
	assert.Equal(t, "Parent Awa", rec.Child.Parent.Name)
	assert.Equal(t, "Tata Ama", rec.RecordedBy.Name)

	_, err = f.mark(t, c1)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.False(t, apperr.IsRetryable(err))

	// the next day is a fresh slot
	f.svc.Now = func() time.Time { return mar1.AddDate(0, 0, 1) }
	_, err = f.mark(t, c1)
	require.NoError(t, err)

	var n int64
	require.NoError(t, f.db.Model(&model.AttendanceModel{}).Where("child_id = ?", c1.ID).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}

func TestMarkValidatesChild(t *testing.T) {
	f := newFixture(t, mar1)

	_, err := f.svc.Mark(context.Background(), f.staff, dto.MarkAttendanceRequest{ChildID: "not-a-uuid"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.Mark(context.Background(), f.staff, dto.MarkAttendanceRequest{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.Mark(context.Background(), f.staff, dto.MarkAttendanceRequest{ChildID: uuid.NewString()})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestConcurrentMarksExactlyOneWins(t *testing.T) {
	f := newFixture(t, mar1)
	c1 := testutil.CreateChild(t, f.db, "Kossi", childModel.ClassGrandeSection)

	const n = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
		other     []error
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.mark(t, c1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case apperr.Is(err, apperr.KindConflict):
				conflicts++
			default:
				other = append(other, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Empty(t, other)
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
}

func TestUniqueIndexRejectsDuplicateDay(t *testing.T) {
	f := newFixture(t, mar1)
	c1 := testutil.CreateChild(t, f.db, "Afi", childModel.ClassCrecheGarderie)
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	first := &model.AttendanceModel{ChildID: c1.ID, RecordedBy: f.staff.ID, Date: day, CheckInTime: mar1, Status: model.StatusPresent}
	require.NoError(t, f.db.Create(first).Error)

	dup := &model.AttendanceModel{ChildID: c1.ID, RecordedBy: f.admin.ID, Date: day, CheckInTime: mar1.Add(time.Hour), Status: model.StatusLate}
	err := f.db.Create(dup).Error
	require.Error(t, err)
	assert.True(t, apperr.IsUniqueViolation(err))
}

func TestListForDayFiltersByLocalDay(t *testing.T) {
	f := newFixture(t, mar1)
	a := testutil.CreateChild(t, f.db, "Awa", childModel.ClassPetiteSection)
	b := testutil.CreateChild(t, f.db, "Bella", childModel.ClassGrandeSection)
	_, err := f.mark(t, a)
	require.NoError(t, err)
	f.svc.Now = func() time.Time { return mar1.Add(time.Hour) }
	_, err = f.mark(t, b)
	require.NoError(t, err)
	f.svc.Now = func() time.Time { return mar1.AddDate(0, 0, 1) }
	_, err = f.mark(t, a)
	require.NoError(t, err)

	morning, err := f.svc.ListForDay(context.Background(), ListQuery{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	evening, err := f.svc.ListForDay(context.Background(), ListQuery{Date: time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	require.Len(t, morning.Items, 2)
	assert.Equal(t, morning.Items, evening.Items)
	// newest check-in first
	assert.Equal(t, "Bella", morning.Items[0].Child.FirstName)
	assert.Equal(t, 1, morning.Pagination.TotalPages)
	assert.Equal(t, DefaultListLimit, morning.Pagination.Limit)
}

func TestListForDayClassFilterAfterPaging(t *testing.T) {
	f := newFixture(t, mar1)
	for i, class := range []childModel.ChildClass{
		childModel.ClassPetiteSection, childModel.ClassGrandeSection, childModel.ClassPetiteSection,
	} {
		c := testutil.CreateChild(t, f.db, string(rune('A'+i))+"child", class)
		f.svc.Now = func() time.Time { return mar1.Add(time.Duration(i) * time.Minute) }
		_, err := f.mark(t, c)
		require.NoError(t, err)
	}

	res, err := f.svc.ListForDay(context.Background(), ListQuery{
		Date:  mar1,
		Class: childModel.ClassPetiteSection,
		Limit: 2,
	})
	require.NoError(t, err)
	// page 1 holds the two newest marks; only one of them is petite_section
	assert.Len(t, res.Items, 1)
	assert.EqualValues(t, 1, res.Pagination.Total)
	assert.Equal(t, 2, res.Pagination.TotalPages)
	assert.True(t, res.Pagination.HasNext)

	_, err = f.svc.ListForDay(context.Background(), ListQuery{Date: mar1, Class: "cp"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestRosterWithPresence(t *testing.T) {
	f := newFixture(t, mar1)
	zoe := testutil.CreateChild(t, f.db, "Zoe", childModel.ClassPetiteSection)
	ama := testutil.CreateChild(t, f.db, "Ama", childModel.ClassGrandeSection)
	gone := testutil.CreateChild(t, f.db, "Gone", childModel.ClassGrandeSection)
	require.NoError(t, f.db.Model(gone).Update("is_active", false).Error)

	_, err := f.mark(t, zoe)
	require.NoError(t, err)

	roster, err := f.svc.RosterWithPresence(context.Background(), mar1)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, ama.ID, roster[0].ID)
	assert.False(t, roster[0].IsPresent)
	assert.Equal(t, zoe.ID, roster[1].ID)
	assert.True(t, roster[1].IsPresent)

	next, err := f.svc.RosterWithPresence(context.Background(), mar1.AddDate(0, 0, 1))
	require.NoError(t, err)
	for _, e := range next {
		assert.False(t, e.IsPresent)
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t, mar1) // friday
	a := testutil.CreateChild(t, f.db, "A", childModel.ClassPetiteSection)
	b := testutil.CreateChild(t, f.db, "B", childModel.ClassPetiteSection)
	testutil.CreateChild(t, f.db, "C", childModel.ClassGrandeSection)

	f.svc.Now = func() time.Time { return mar1.AddDate(0, 0, -3) } // tuesday
	_, err := f.mark(t, a)
	require.NoError(t, err)
	f.svc.Now = func() time.Time { return mar1 }
	_, err = f.mark(t, a)
	require.NoError(t, err)
	_, err = f.mark(t, b)
	require.NoError(t, err)

	st, err := f.svc.Stats(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", st.Date)
	assert.EqualValues(t, 2, st.TotalPresent)
	assert.EqualValues(t, 3, st.TotalChildren)
	assert.EqualValues(t, 1, st.AbsentCount)
	assert.InDelta(t, 66.7, st.AttendanceRate, 0.001)
	require.Len(t, st.AttendanceByClass, 1)
	assert.Equal(t, childModel.ClassPetiteSection, st.AttendanceByClass[0].Class)
	assert.EqualValues(t, 2, st.AttendanceByClass[0].Count)

	require.Len(t, st.WeeklyStats, 7)
	assert.Equal(t, "monday", st.WeeklyStats[0].Day)
	assert.Equal(t, "2024-02-26", st.WeeklyStats[0].Date)
	assert.EqualValues(t, 1, st.WeeklyStats[1].Count)
	assert.EqualValues(t, 2, st.WeeklyStats[4].Count)
	assert.EqualValues(t, 0, st.WeeklyStats[6].Count)
}

func TestUpdateAndDeleteArePrivileged(t *testing.T) {
	f := newFixture(t, mar1)
	c := testutil.CreateChild(t, f.db, "Yao", childModel.ClassToutePetiteSection)
	rec, err := f.mark(t, c)
	require.NoError(t, err)

	late := "late"
	_, err = f.svc.Update(context.Background(), f.staff, rec.ID, dto.UpdateAttendanceRequest{Status: &late})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	bad := "sick"
	_, err = f.svc.Update(context.Background(), f.admin, rec.ID, dto.UpdateAttendanceRequest{Status: &bad})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	out := mar1.Add(8 * time.Hour)
	note := "picked up by grandmother"
	upd, err := f.svc.Update(context.Background(), f.admin, rec.ID, dto.UpdateAttendanceRequest{
		Status: &late, CheckOutTime: &out, Notes: &note,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusLate, upd.Status)
	require.NotNil(t, upd.CheckOutTime)
	assert.True(t, out.Equal(*upd.CheckOutTime))
	assert.Equal(t, note, *upd.Notes)

	before := mar1.Add(-time.Hour)
	_, err = f.svc.Update(context.Background(), f.admin, rec.ID, dto.UpdateAttendanceRequest{CheckOutTime: &before})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.Update(context.Background(), f.admin, uuid.New(), dto.UpdateAttendanceRequest{})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	assert.True(t, apperr.Is(f.svc.Delete(context.Background(), f.staff, rec.ID), apperr.KindForbidden))
	require.NoError(t, f.svc.Delete(context.Background(), f.admin, rec.ID))
	assert.True(t, apperr.Is(f.svc.Delete(context.Background(), f.admin, rec.ID), apperr.KindNotFound))

	// the slot is free again once the mark is deleted
	_, err = f.mark(t, c)
	assert.NoError(t, err)
}
