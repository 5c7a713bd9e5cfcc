package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"garderie_backend/internals/constants"
	"garderie_backend/internals/features/menus/menus/dto"
	"garderie_backend/internals/features/menus/menus/model"
	"garderie_backend/internals/helpers/apperr"
	helperAuth "garderie_backend/internals/helpers/auth"
	"garderie_backend/internals/testutil"
)

// a Wednesday
var fixedNow = time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, helperAuth.Actor) {
	t.Helper()
	db := testutil.NewDB(t)
	u := testutil.CreateUser(t, db, "Chef", "chef@garderie.test", constants.RoleAdmin)
	svc := New(db, zap.NewNop())
	svc.Now = func() time.Time { return fixedNow }
	return svc, helperAuth.Actor{ID: u.ID, Name: u.Name, Role: u.Role}
}

func sampleMeals() model.WeeklyMeals {
	return model.WeeklyMeals{
		Monday: model.Meal{Breakfast: " bouillie ", Lunch: "riz sauce arachide", Snack: "banane"},
		Friday: model.Meal{Lunch: "attiéké poisson"},
	}
}

func TestCreateNormalizesWeek(t *testing.T) {
	svc, actor := newService(t)

	resp, err := svc.Create(context.Background(), actor, dto.CreateMenuRequest{
		WeekStartDate: "2024-03-14", // thursday
		Meals:         sampleMeals(),
	})
	require.NoError(t, err)
	assert.True(t, resp.WeekStartDate.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)))
	assert.True(t, resp.WeekEndDate.Equal(time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "bouillie", resp.Meals.Monday.Breakfast)
	assert.Equal(t, "Chef", resp.CreatedBy.Name)
	assert.True(t, resp.IsActive)
}

func TestCreateRejectsTakenWeek(t *testing.T) {
	svc, actor := newService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, actor, dto.CreateMenuRequest{WeekStartDate: "2024-03-11", Meals: sampleMeals()})
	require.NoError(t, err)

	_, err = svc.Create(ctx, actor, dto.CreateMenuRequest{WeekStartDate: "2024-03-15", Meals: sampleMeals()})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	// a deleted menu still holds its week
	require.NoError(t, svc.Delete(ctx, first.ID))
	_, err = svc.Create(ctx, actor, dto.CreateMenuRequest{WeekStartDate: "2024-03-11", Meals: sampleMeals()})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = svc.Create(ctx, actor, dto.CreateMenuRequest{WeekStartDate: "11/03/2024"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCurrentAndList(t *testing.T) {
	svc, actor := newService(t)
	ctx := context.Background()

	_, err := svc.Current(ctx)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	for _, week := range []string{"2024-03-04", "2024-03-11", "2024-03-18"} {
		_, err := svc.Create(ctx, actor, dto.CreateMenuRequest{WeekStartDate: week, Meals: sampleMeals()})
		require.NoError(t, err)
	}

	cur, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.True(t, cur.WeekStartDate.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)))

	// saturday is still covered
	svc.Now = func() time.Time { return time.Date(2024, 3, 16, 17, 0, 0, 0, time.UTC) }
	cur, err = svc.Current(ctx)
	require.NoError(t, err)
	assert.True(t, cur.WeekStartDate.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)))

	all, err := svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].WeekStartDate.After(all[1].WeekStartDate))

	from := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	filtered, err := svc.List(ctx, ListQuery{StartDate: &from})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	require.NoError(t, svc.Delete(ctx, all[0].ID))
	all, err = svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateAndDuplicate(t *testing.T) {
	svc, actor := newService(t)
	ctx := context.Background()

	src, err := svc.Create(ctx, actor, dto.CreateMenuRequest{WeekStartDate: "2024-03-11", Meals: sampleMeals()})
	require.NoError(t, err)

	meals := sampleMeals()
	meals.Tuesday.Lunch = "foufou"
	upd, err := svc.Update(ctx, src.ID, dto.UpdateMenuRequest{Meals: &meals})
	require.NoError(t, err)
	assert.Equal(t, "foufou", upd.Meals.Tuesday.Lunch)
	assert.True(t, upd.WeekStartDate.Equal(src.WeekStartDate))

	dup, err := svc.Duplicate(ctx, actor, src.ID, dto.DuplicateMenuRequest{WeekStartDate: "2024-03-20"})
	require.NoError(t, err)
	assert.NotEqual(t, src.ID, dup.ID)
	assert.True(t, dup.WeekStartDate.Equal(time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "foufou", dup.Meals.Tuesday.Lunch)

	// moving onto an occupied week
	week := "2024-03-18"
	_, err = svc.Update(ctx, src.ID, dto.UpdateMenuRequest{WeekStartDate: &week})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = svc.Duplicate(ctx, actor, src.ID, dto.DuplicateMenuRequest{WeekStartDate: "2024-03-11"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}
