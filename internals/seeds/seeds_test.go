package seeds

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	menuModel "garderie_backend/internals/features/menus/menus/model"
	"garderie_backend/internals/testutil"
)

func TestEmbeddedDataParses(t *testing.T) {
	d, err := Parse(defaultData)
	require.NoError(t, err)
	assert.Len(t, d.Users, 3)
	assert.Len(t, d.Children, 4)
	require.Len(t, d.Menus, 1)
	assert.Equal(t, "Riz sauce arachide", d.Menus[0].Meals.Monday.Lunch)
	assert.Equal(t, "Ananas", d.Menus[0].Meals.Saturday.Snack)
}

func TestRunIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	first, err := RunDefault(ctx, db, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 3, Children: 4, Menus: 1}, first)

	again, err := RunDefault(ctx, db, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Result{}, again)

	var menu menuModel.MenuModel
	require.NoError(t, db.First(&menu).Error)
	assert.Equal(t, "Bouillie de mil", menu.Meals.Data().Monday.Breakfast)
}

func TestRunRejectsUnknownRole(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := Run(context.Background(), db, &Data{Users: []UserSeed{{Name: "X", Email: "x@y.z", Password: "secret1", Role: "owner"}}}, nil)
	assert.Error(t, err)
}
