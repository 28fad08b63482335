package page

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockdocs/internal/apperr"
	"blockdocs/internal/database/dbtest"
	"blockdocs/internal/models"
	"blockdocs/internal/schema"
)

func ptr[T any](v T) *T { return &v }

func newRepo(t *testing.T) (*Repository, *sql.DB) {
	db := dbtest.New(t)
	repo := NewRepository(db)
	repo.Now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return repo, db
}

func TestCreateDefaults(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	p, err := repo.Create(ctx, models.PageFields{Title: ptr("Setup"), Slug: ptr("setup")})
	require.NoError(t, err)
	assert.Equal(t, "setup", p.Slug)
	assert.Equal(t, 0, p.Order)
	assert.False(t, p.IsPublished)
	assert.Nil(t, p.EquipmentID)
	assert.Empty(t, p.Blocks)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	_, err := repo.Create(ctx, models.PageFields{Slug: ptr("x")})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = repo.Create(ctx, models.PageFields{Title: ptr("X"), Slug: ptr("  ")})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = repo.Create(ctx, models.PageFields{Title: ptr("X"), Slug: ptr("x"), EquipmentID: ptr(int64(404))})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCreateSlugConflict(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	_, err := repo.Create(ctx, models.PageFields{Title: ptr("A"), Slug: ptr("same")})
	require.NoError(t, err)
	_, err = repo.Create(ctx, models.PageFields{Title: ptr("B"), Slug: ptr("same")})
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestFindBySlugPublishedOnly(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	_, err := repo.Create(ctx, models.PageFields{Title: ptr("Draft"), Slug: ptr("draft")})
	require.NoError(t, err)

	_, err = repo.FindBySlug(ctx, "draft", true)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = repo.FindBySlug(ctx, "missing", true)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	p, err := repo.FindBySlug(ctx, "draft", false)
	require.NoError(t, err)
	assert.Equal(t, "Draft", p.Title)
}

func TestUpdatePartial(t *testing.T) {
	ctx := context.Background()
	repo, db := newRepo(t)

	res, err := db.Exec("INSERT INTO equipments (name) VALUES ('JC450')")
	require.NoError(t, err)
	eqID, _ := res.LastInsertId()

	p, err := repo.Create(ctx, models.PageFields{Title: ptr("A"), Slug: ptr("a"), Description: ptr("first")})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, p.ID, models.PageFields{IsPublished: ptr(true), EquipmentID: &eqID})
	require.NoError(t, err)
	assert.True(t, updated.IsPublished)
	assert.Equal(t, "A", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "first", *updated.Description)
	require.NotNil(t, updated.Equipment)
	assert.Equal(t, "JC450", updated.Equipment.Name)

	cleared, err := repo.Update(ctx, p.ID, models.PageFields{ClearEquipment: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.EquipmentID)

	_, err = repo.Update(ctx, p.ID, models.PageFields{Title: ptr("")})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = repo.Update(ctx, 999, models.PageFields{Title: ptr("Z")})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestDeleteCascadesBlocks(t *testing.T) {
	ctx := context.Background()
	repo, db := newRepo(t)

	p, err := repo.Create(ctx, models.PageFields{Title: ptr("A"), Slug: ptr("a")})
	require.NoError(t, err)
	_, err = repo.CreateBlock(ctx, models.Block{PageID: p.ID, Type: schema.TypeText, Data: `{"content":"x"}`})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, p.ID))

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM blocks").Scan(&n))
	assert.Zero(t, n)
	assert.True(t, errors.Is(repo.Delete(ctx, p.ID), apperr.ErrNotFound))
}

func TestListFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	for _, f := range []models.PageFields{
		{Title: ptr("Home"), Slug: ptr("home"), IsPublished: ptr(true), Order: ptr(0)},
		{Title: ptr("Second"), Slug: ptr("second"), IsPublished: ptr(true), Order: ptr(2)},
		{Title: ptr("First"), Slug: ptr("first"), IsPublished: ptr(true), Order: ptr(1)},
		{Title: ptr("Draft"), Slug: ptr("draft"), Order: ptr(0)},
	} {
		_, err := repo.Create(ctx, f)
		require.NoError(t, err)
	}

	pages, err := repo.List(ctx, models.PageFilter{Published: ptr(true), ExcludeSlug: "home"})
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "first", pages[0].Slug)
	assert.Equal(t, "second", pages[1].Slug)

	all, err := repo.List(ctx, models.PageFilter{NewestFirst: true})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "draft", all[0].Slug)
}

func TestBlocksOrderedByPositionThenID(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	p, err := repo.Create(ctx, models.PageFields{Title: ptr("A"), Slug: ptr("a")})
	require.NoError(t, err)

	for _, b := range []models.Block{
		{Type: schema.TypeText, Order: 1, Data: `{"content":"second"}`},
		{Type: schema.TypeText, Order: 0, Data: `{"content":"first"}`},
		{Type: schema.TypeText, Order: 1, Data: `{"content":"third"}`},
	} {
		b.PageID = p.ID
		_, err := repo.CreateBlock(ctx, b)
		require.NoError(t, err)
	}

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Blocks, 3)
	assert.Equal(t, `{"content":"first"}`, got.Blocks[0].Data)
	assert.Equal(t, `{"content":"second"}`, got.Blocks[1].Data)
	assert.Equal(t, `{"content":"third"}`, got.Blocks[2].Data)

	next, err := repo.NextBlockOrder(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, next)
}

func TestCreateBlockForMissingPage(t *testing.T) {
	repo, _ := newRepo(t)
	_, err := repo.CreateBlock(context.Background(), models.Block{PageID: 77, Type: schema.TypeText, Data: "{}"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestUpdateAndDeleteBlock(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	p, _ := repo.Create(ctx, models.PageFields{Title: ptr("A"), Slug: ptr("a")})
	b, err := repo.CreateBlock(ctx, models.Block{PageID: p.ID, Type: schema.TypeText, Data: `{"content":"x"}`})
	require.NoError(t, err)

	updated, err := repo.UpdateBlock(ctx, b.ID, BlockFields{Order: ptr(5), Data: ptr(`{"content":"y"}`)})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Order)
	assert.Equal(t, `{"content":"y"}`, updated.Data)
	assert.Equal(t, schema.TypeText, updated.Type)

	require.NoError(t, repo.DeleteBlock(ctx, b.ID))
	assert.True(t, errors.Is(repo.DeleteBlock(ctx, b.ID), apperr.ErrNotFound))
	_, err = repo.UpdateBlock(ctx, b.ID, BlockFields{Order: ptr(1)})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestReplaceBlocksIsAtomic(t *testing.T) {
	ctx := context.Background()
	repo, db := newRepo(t)

	p, _ := repo.Create(ctx, models.PageFields{Title: ptr("A"), Slug: ptr("a")})
	_, err := repo.ReplaceBlocks(ctx, p.ID, []models.Block{
		{Type: schema.TypeText, Order: 0, Data: `{"content":"one"}`},
		{Type: schema.TypeCode, Order: 1, Data: `{"language":"go","code":"x"}`},
	})
	require.NoError(t, err)

	// A failing insert mid-way must leave the previous list intact.
	_, err = db.Exec(`CREATE TRIGGER reject_bad BEFORE INSERT ON blocks
		WHEN NEW.data = 'boom' BEGIN SELECT RAISE(ABORT, 'boom'); END`)
	require.NoError(t, err)

	_, err = repo.ReplaceBlocks(ctx, p.ID, []models.Block{
		{Type: schema.TypeText, Order: 0, Data: `{"content":"new"}`},
		{Type: schema.TypeText, Order: 1, Data: "boom"},
	})
	require.Error(t, err)

	blocks, err := repo.ListBlocks(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, `{"content":"one"}`, blocks[0].Data)
	assert.Equal(t, schema.TypeCode, blocks[1].Type)

	_, err = repo.ReplaceBlocks(ctx, 999, nil)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestDuplicate(t *testing.T) {
	ctx := context.Background()
	repo, db := newRepo(t)

	res, err := db.Exec("INSERT INTO equipments (name) VALUES ('JC261')")
	require.NoError(t, err)
	eqID, _ := res.LastInsertId()

	src, err := repo.Create(ctx, models.PageFields{
		Title: ptr("Guide"), Slug: ptr("guide"), Description: ptr("d"), IsPublished: ptr(true), Order: ptr(3),
	})
	require.NoError(t, err)
	a, _ := repo.CreateBlock(ctx, models.Block{PageID: src.ID, Type: schema.TypeText, Order: 0, Data: `{"content":"A"}`})
	b, _ := repo.CreateBlock(ctx, models.Block{PageID: src.ID, Type: schema.TypeRawHTML, Order: 1, Data: "<p>B</p>"})

	dup, err := repo.Duplicate(ctx, src.ID, &eqID)
	require.NoError(t, err)

	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, "Guide (Copy)", dup.Title)
	assert.Equal(t, "guide-copy-1714557600000", dup.Slug)
	assert.False(t, dup.IsPublished)
	assert.Equal(t, 3, dup.Order)
	require.NotNil(t, dup.EquipmentID)
	assert.Equal(t, eqID, *dup.EquipmentID)

	require.Len(t, dup.Blocks, 2)
	for i, orig := range []*models.Block{a, b} {
		assert.NotEqual(t, orig.ID, dup.Blocks[i].ID)
		assert.Equal(t, orig.Type, dup.Blocks[i].Type)
		assert.Equal(t, orig.Order, dup.Blocks[i].Order)
		assert.Equal(t, orig.Data, dup.Blocks[i].Data)
	}

	_, err = repo.Duplicate(ctx, 999, nil)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestSavePageRollsBackMetadata(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	_, _ = repo.Create(ctx, models.PageFields{Title: ptr("Other"), Slug: ptr("taken")})
	p, _ := repo.Create(ctx, models.PageFields{Title: ptr("A"), Slug: ptr("a")})

	_, err := repo.SavePage(ctx, p.ID, models.PageFields{Title: ptr("Renamed"), Slug: ptr("taken")},
		[]models.Block{{Type: schema.TypeText, Data: `{"content":"x"}`}})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
	assert.Empty(t, got.Blocks)

	saved, err := repo.SavePage(ctx, p.ID, models.PageFields{Title: ptr("Renamed")},
		[]models.Block{{Type: schema.TypeText, Data: `{"content":"x"}`}})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", saved.Title)
	assert.Len(t, saved.Blocks, 1)
}

func TestCountByEquipment(t *testing.T) {
	ctx := context.Background()
	repo, db := newRepo(t)

	res, _ := db.Exec("INSERT INTO equipments (name) VALUES ('E')")
	eqID, _ := res.LastInsertId()
	_, err := repo.Create(ctx, models.PageFields{Title: ptr("A"), Slug: ptr("a"), EquipmentID: &eqID})
	require.NoError(t, err)

	n, err := repo.CountByEquipment(ctx, eqID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
