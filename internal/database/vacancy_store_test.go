package database_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/justsurfingit/vacancy-parser/internal/database"
	"github.com/justsurfingit/vacancy-parser/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) (*database.VacancyStore, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// sqlite allows one writer; a single connection keeps the in-memory db alive too.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return database.NewVacancyStore(db), db
}

func strPtr(s string) *string { return &s }

func vacancy(link, text string) *models.Vacancy {
	v := &models.Vacancy{
		Text:     text,
		Channel:  "jobs",
		Category: models.CategoryMaybeFits,
		Skills:   []string{"Go", "SQL"},
		PostedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if link != "" {
		v.MessageLink = strPtr(link)
	}
	return v
}

func count(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Vacancy{}).Count(&n).Error)
	return n
}

func TestUpsert_SameLinkUpdatesInPlace(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	first, err := store.Upsert(ctx, vacancy("https://t.me/jobs/1", "first"))
	require.NoError(t, err)
	require.NotZero(t, first.ID)
	assert.Equal(t, models.StatusNew, first.Status)

	require.NoError(t, db.Model(&models.Vacancy{}).Where("id = ?", first.ID).Update("status", "approved").Error)

	second := vacancy("https://t.me/jobs/1", "second")
	second.Category = models.CategoryDefinitelyFits
	second.Skills = []string{"React"}
	got, err := store.Upsert(ctx, second)
	require.NoError(t, err)

	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "second", got.Text)
	assert.Equal(t, models.CategoryDefinitelyFits, got.Category)
	assert.Equal(t, []string{"React"}, got.Skills)
	assert.Equal(t, "approved", got.Status, "moderation status survives resubmission")
	assert.Equal(t, int64(1), count(t, db))
}

func TestUpsert_EmptyLinkAlwaysInserts(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	a, err := store.Upsert(ctx, vacancy("", "a"))
	require.NoError(t, err)
	b, err := store.Upsert(ctx, &models.Vacancy{Text: "b", MessageLink: strPtr("")})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Nil(t, b.MessageLink)
	assert.Equal(t, int64(2), count(t, db))
}

func TestUpsert_ConcurrentSameLinkYieldsOneRow(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Upsert(ctx, vacancy("https://t.me/jobs/race", fmt.Sprintf("v%d", i)))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int64(1), count(t, db))
}

func TestFindByMessageLink(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.FindByMessageLink(ctx, "https://t.me/jobs/missing")
	assert.ErrorIs(t, err, database.ErrNotFound)

	saved, err := store.Insert(ctx, vacancy("https://t.me/jobs/2", "text"))
	require.NoError(t, err)

	got, err := store.FindByMessageLink(ctx, "https://t.me/jobs/2")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, []string{"Go", "SQL"}, got.Skills)
}

func TestUpdate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	saved, err := store.Insert(ctx, vacancy("https://t.me/jobs/3", "old"))
	require.NoError(t, err)

	got, err := store.Update(ctx, saved.ID, vacancy("https://t.me/jobs/3", "new"))
	require.NoError(t, err)
	assert.Equal(t, "new", got.Text)
	assert.Equal(t, models.StatusNew, got.Status)

	_, err = store.Update(ctx, saved.ID+100, vacancy("", "ghost"))
	assert.ErrorIs(t, err, database.ErrNotFound)
}
