package equipment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockdocs/internal/apperr"
	"blockdocs/internal/database/dbtest"
)

func TestCreateAppendsAndDefaults(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.New(t))

	first, err := repo.Create(ctx, Fields{Name: "JC450"})
	require.NoError(t, err)
	assert.Equal(t, 0, first.Order)
	assert.Equal(t, defaultIcon, first.Icon)
	assert.Equal(t, defaultColor, first.Color)

	second, err := repo.Create(ctx, Fields{Name: "JC261", Icon: "mdi-cellphone", Color: "slate"})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Order)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "JC450", list[0].Name)
	assert.Equal(t, "JC261", list[1].Name)
}

func TestCreateRequiresName(t *testing.T) {
	repo := NewRepository(dbtest.New(t))
	_, err := repo.Create(context.Background(), Fields{Name: "   "})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCreateDuplicateNameConflicts(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.New(t))

	_, err := repo.Create(ctx, Fields{Name: "JC450"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, Fields{Name: "JC450"})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.New(t))

	a, err := repo.Create(ctx, Fields{Name: "A"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, Fields{Name: "B"})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, a.ID, Fields{Name: "A2", Color: "gray"})
	require.NoError(t, err)
	assert.Equal(t, "A2", updated.Name)
	assert.Equal(t, "gray", updated.Color)

	_, err = repo.Update(ctx, a.ID, Fields{Name: "B"})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	_, err = repo.Update(ctx, 999, Fields{Name: "C"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestDeleteRefusedWhilePagesReference(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	repo := NewRepository(db)

	e, err := repo.Create(ctx, Fields{Name: "JC450"})
	require.NoError(t, err)
	for _, slug := range []string{"a", "b"} {
		_, err := db.Exec("INSERT INTO pages (title, slug, equipment_id) VALUES (?, ?, ?)", slug, slug, e.ID)
		require.NoError(t, err)
	}

	err = repo.Delete(ctx, e.ID)
	var ce *apperr.ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 2, ce.Count)

	_, err = db.Exec("DELETE FROM pages")
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, e.ID))

	_, err = repo.FindByID(ctx, e.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.True(t, errors.Is(repo.Delete(ctx, e.ID), apperr.ErrNotFound))
}

func TestReorder(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.New(t))

	a, _ := repo.Create(ctx, Fields{Name: "A"})
	b, _ := repo.Create(ctx, Fields{Name: "B"})
	c, _ := repo.Create(ctx, Fields{Name: "C"})

	require.NoError(t, repo.Reorder(ctx, []int64{c.ID, a.ID, b.ID}))
	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, []string{list[0].Name, list[1].Name, list[2].Name})

	assert.True(t, errors.Is(repo.Reorder(ctx, []int64{a.ID, 42}), apperr.ErrNotFound))
	list, _ = repo.List(ctx)
	assert.Equal(t, "C", list[0].Name)
}
