package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"garderie_backend/internals/constants"
	"garderie_backend/internals/features/finance/expenses/dto"
	"garderie_backend/internals/features/finance/expenses/model"
	receiptService "garderie_backend/internals/features/finance/receipts/service"
	"garderie_backend/internals/helpers/apperr"
	helperAuth "garderie_backend/internals/helpers/auth"
	"garderie_backend/internals/helpers/dbtime"
	"garderie_backend/internals/testutil"
)

// Friday 2024-03-15
var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc    *Service
	admin  helperAuth.Actor
	staff  helperAuth.Actor
	staff2 helperAuth.Actor
}

type fakePrinter struct{ doc []byte }

func (f *fakePrinter) PrintPDF(_ context.Context, doc []byte) ([]byte, error) {
	f.doc = doc
	return []byte("%PDF"), nil
}

func newFixture(t *testing.T, printer receiptService.Printer) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	renderer, err := receiptService.NewRenderer(printer, receiptService.Company{Name: "Garderie Test"})
	require.NoError(t, err)
	svc := New(db, zap.NewNop(), receiptService.NewAllocator(receiptService.StrategyCounter), renderer)
	svc.Now = func() time.Time { return fixedNow }

	actor := func(name, email, role string) helperAuth.Actor {
		u := testutil.CreateUser(t, db, name, email, role)
		return helperAuth.Actor{ID: u.ID, Name: u.Name, Role: u.Role}
	}
	return fixture{
		svc:    svc,
		admin:  actor("Directrice", "dir@garderie.test", constants.RoleAdmin),
		staff:  actor("Tata Ama", "ama@garderie.test", constants.RoleStaff),
		staff2: actor("Tata Esi", "esi@garderie.test", constants.RoleStaff),
	}
}

func amount(v int64) *int64 { return &v }
func str(s string) *string  { return &s }

func insert(t *testing.T, db *gorm.DB, by uuid.UUID, n int, title model.ExpenseTitle, status model.ExpenseStatus, amt int64, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&model.ExpenseModel{
		CreatedBy:     by,
		Title:         title,
		Description:   "seed",
		Amount:        amt,
		Date:          at,
		ReceiptNumber: receiptService.Format(receiptService.KindExpense, at, int64(n)),
		Status:        status,
	}).Error)
}

func TestCreateDefaultsAndNumbering(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	got, err := f.svc.Create(ctx, f.staff, dto.CreateExpenseRequest{
		Description: "  Facture CEET mars ",
		Amount:      amount(25000),
	})
	require.NoError(t, err)
	assert.Equal(t, "EXP-20240315-0001", got.ReceiptNumber)
	assert.Equal(t, model.TitleOther, got.Title)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Equal(t, "Facture CEET mars", got.Description)
	assert.Equal(t, f.staff.ID, got.CreatedBy.ID)
	assert.Equal(t, fixedNow, got.Date)

	next, err := f.svc.Create(ctx, f.staff, dto.CreateExpenseRequest{
		Title:       "Electricity",
		Description: "CEET",
		Amount:      amount(1000),
		Date:        str("2024-03-10"),
	})
	require.NoError(t, err)
	assert.Equal(t, "EXP-20240315-0002", next.ReceiptNumber)
	assert.Equal(t, model.TitleElectricity, next.Title)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), next.Date)

	_, err = f.svc.Create(ctx, f.staff, dto.CreateExpenseRequest{Amount: amount(10)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.svc.Create(ctx, f.staff, dto.CreateExpenseRequest{Description: "x", Title: "rent", Amount: amount(10)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCreateNumbersPastDeletedReceipts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	insert(t, f.svc.DB, f.staff.ID, 2, model.TitleWater, model.StatusPending, 500, fixedNow)
	insert(t, f.svc.DB, f.staff.ID, 3, model.TitleWater, model.StatusPending, 500, fixedNow)

	for _, want := range []string{"EXP-20240315-0004", "EXP-20240315-0005"} {
		got, err := f.svc.Create(ctx, f.staff, dto.CreateExpenseRequest{Description: "Eau", Amount: amount(700)})
		require.NoError(t, err)
		assert.Equal(t, want, got.ReceiptNumber)
	}
}

func TestUpdateReviewFieldsNeedAdmin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	e, err := f.svc.Create(ctx, f.staff, dto.CreateExpenseRequest{Description: "Eau", Title: "water", Amount: amount(8000)})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.staff, e.ID, dto.UpdateExpenseRequest{Status: str("approved")})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	_, err = f.svc.Update(ctx, f.staff, e.ID, dto.UpdateExpenseRequest{Notes: str("ok")})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	// the creator may still fix the content
	got, err := f.svc.Update(ctx, f.staff, e.ID, dto.UpdateExpenseRequest{Amount: amount(9000)})
	require.NoError(t, err)
	assert.EqualValues(t, 9000, got.Amount)

	// another staff member may not
	_, err = f.svc.Update(ctx, f.staff2, e.ID, dto.UpdateExpenseRequest{Amount: amount(1)})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	got, err = f.svc.Update(ctx, f.admin, e.ID, dto.UpdateExpenseRequest{Status: str("approved"), Notes: str("vu")})
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, got.Status)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "vu", *got.Notes)
	assert.Equal(t, "Tata Ama", got.CreatedBy.Name)

	_, err = f.svc.Update(ctx, f.admin, e.ID, dto.UpdateExpenseRequest{Status: str("paid")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.svc.Update(ctx, f.admin, uuid.New(), dto.UpdateExpenseRequest{Status: str("rejected")})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeleteOwnerOrAdmin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	e1, err := f.svc.Create(ctx, f.staff, dto.CreateExpenseRequest{Description: "Gaz", Title: "gas", Amount: amount(6000)})
	require.NoError(t, err)
	e2, err := f.svc.Create(ctx, f.staff, dto.CreateExpenseRequest{Description: "Wifi", Title: "wifi", Amount: amount(15000)})
	require.NoError(t, err)

	assert.True(t, apperr.Is(f.svc.Delete(ctx, f.staff2, e1.ID), apperr.KindForbidden))
	require.NoError(t, f.svc.Delete(ctx, f.staff, e1.ID))
	require.NoError(t, f.svc.Delete(ctx, f.admin, e2.ID))
	assert.True(t, apperr.Is(f.svc.Delete(ctx, f.admin, e2.ID), apperr.KindNotFound))
}

func TestListFilters(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	db := f.svc.DB

	insert(t, db, f.staff.ID, 1, model.TitleWater, model.StatusPending, 1000, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	insert(t, db, f.staff.ID, 2, model.TitleWater, model.StatusApproved, 2000, time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC))
	insert(t, db, f.admin.ID, 3, model.TitleGas, model.StatusApproved, 3000, time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC))

	res, err := f.svc.List(ctx, ListQuery{Title: model.TitleWater})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)

	res, err = f.svc.List(ctx, ListQuery{Status: model.StatusApproved})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Pagination.Total)

	start := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	res, err = f.svc.List(ctx, ListQuery{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2, "end date covers its whole day")

	_, err = f.svc.List(ctx, ListQuery{Title: "rent"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestStats(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	db := f.svc.DB

	insert(t, db, f.staff.ID, 1, model.TitleWater, model.StatusPending, 1000, fixedNow)
	insert(t, db, f.staff.ID, 2, model.TitleGas, model.StatusApproved, 4000, fixedNow.Add(-time.Hour))
	insert(t, db, f.staff.ID, 3, model.TitleWater, model.StatusApproved, 2000, fixedNow.AddDate(0, 0, -3))
	insert(t, db, f.staff.ID, 4, model.TitleWifi, model.StatusRejected, 9000, time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC))

	st, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5000, st.TodayTotal)
	assert.EqualValues(t, 2, st.TodayCount)
	assert.EqualValues(t, 7000, st.MonthlyTotal)
	assert.EqualValues(t, 3, st.MonthlyCount)

	require.Len(t, st.ExpensesByCategory, 2)
	assert.Equal(t, model.TitleGas, st.ExpensesByCategory[0].Title)
	assert.Equal(t, model.TitleWater, st.ExpensesByCategory[1].Title)
	assert.EqualValues(t, 3000, st.ExpensesByCategory[1].Total)

	assert.Len(t, st.ExpensesByStatus, 3)

	require.Len(t, st.ExpenseTrend, TrendDays)
	assert.Equal(t, "2024-03-09", st.ExpenseTrend[0].Date)
	assert.Equal(t, "2024-03-15", st.ExpenseTrend[6].Date)
	assert.EqualValues(t, 5000, st.ExpenseTrend[6].Amount)
	assert.EqualValues(t, 2000, st.ExpenseTrend[3].Amount)
}

func TestReportGroupsApprovedOnly(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	db := f.svc.DB

	insert(t, db, f.staff.ID, 1, model.TitleWater, model.StatusApproved, 1000, time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC))
	insert(t, db, f.staff.ID, 2, model.TitleGas, model.StatusApproved, 2000, time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC))
	insert(t, db, f.staff.ID, 3, model.TitleGas, model.StatusApproved, 500, time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC))
	insert(t, db, f.staff.ID, 4, model.TitleGas, model.StatusPending, 7777, time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC))

	rep, err := f.svc.Report(ctx, ReportQuery{GroupBy: dbtime.GroupByWeek})
	require.NoError(t, err)
	require.Len(t, rep, 2)
	assert.Equal(t, "2024-W10", rep[0].Period)
	assert.EqualValues(t, 3000, rep[0].TotalExpenses)
	assert.EqualValues(t, 2, rep[0].TotalCount)
	assert.EqualValues(t, 1000, rep[0].ExpensesByCategory[model.TitleWater])
	assert.EqualValues(t, 2000, rep[0].ExpensesByCategory[model.TitleGas])
	assert.Equal(t, "2024-W11", rep[1].Period)

	start := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	rep, err = f.svc.Report(ctx, ReportQuery{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	require.Len(t, rep, 1)
	assert.Equal(t, "2024-03-06", rep[0].Period)
	assert.EqualValues(t, 2000, rep[0].TotalExpenses)

	_, err = f.svc.Report(ctx, ReportQuery{GroupBy: "year"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestReceipt(t *testing.T) {
	printer := &fakePrinter{}
	f := newFixture(t, printer)
	ctx := context.Background()

	e, err := f.svc.Create(ctx, f.staff, dto.CreateExpenseRequest{Description: "Recharge gaz", Title: "gas", Amount: amount(6500)})
	require.NoError(t, err)

	pdf, name, err := f.svc.Receipt(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), pdf)
	assert.Equal(t, "recu-EXP-20240315-0001.pdf", name)
	assert.Contains(t, string(printer.doc), "Recharge gaz")
}
