package marketing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/adegadigital/adega-backend/pkg/errors"
)

func setupMarketingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:marketing_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	banners := `
CREATE TABLE IF NOT EXISTS banners (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  image_url TEXT NOT NULL,
  link_url TEXT,
  position INTEGER NOT NULL DEFAULT 0,
  starts_at DATETIME,
  ends_at DATETIME,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	events := `
CREATE TABLE IF NOT EXISTS events (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT,
  image_url TEXT,
  starts_at DATETIME NOT NULL,
  ends_at DATETIME,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(banners).Error)
	require.NoError(t, conn.Exec(events).Error)
	return conn
}

func newMarketingService(t *testing.T, now time.Time) Service {
	t.Helper()
	svc, err := NewService(NewRepository(setupMarketingTestDB(t)))
	require.NoError(t, err)
	svc.(*service).now = func() time.Time { return now }
	return svc
}

func ptrTime(v time.Time) *time.Time { return &v }
func ptrStr(v string) *string        { return &v }
func ptrBool(v bool) *bool           { return &v }
func ptrInt(v int) *int              { return &v }

func TestActiveBannersFiltersWindowAndOrdersByPosition(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc := newMarketingService(t, now)
	ctx := context.Background()

	_, err := svc.CreateBanner(ctx, CreateBannerInput{Title: "Sempre", ImageURL: "https://cdn/a.png", Position: 2})
	require.NoError(t, err)
	_, err = svc.CreateBanner(ctx, CreateBannerInput{
		Title:    "Na janela",
		ImageURL: "https://cdn/b.png",
		Position: 1,
		StartsAt: ptrTime(now.Add(-24 * time.Hour)),
		EndsAt:   ptrTime(now.Add(24 * time.Hour)),
	})
	require.NoError(t, err)
	_, err = svc.CreateBanner(ctx, CreateBannerInput{
		Title:    "Expirado",
		ImageURL: "https://cdn/c.png",
		EndsAt:   ptrTime(now.Add(-time.Hour)),
	})
	require.NoError(t, err)
	_, err = svc.CreateBanner(ctx, CreateBannerInput{
		Title:    "Futuro",
		ImageURL: "https://cdn/d.png",
		StartsAt: ptrTime(now.Add(time.Hour)),
	})
	require.NoError(t, err)

	rows, err := svc.ActiveBanners(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Na janela", rows[0].Title)
	assert.Equal(t, "Sempre", rows[1].Title)
}

func TestDeactivatedBannerLeavesPublicFeed(t *testing.T) {
	now := time.Now().UTC()
	svc := newMarketingService(t, now)
	ctx := context.Background()

	banner, err := svc.CreateBanner(ctx, CreateBannerInput{Title: "Promo", ImageURL: "https://cdn/p.png"})
	require.NoError(t, err)

	updated, err := svc.UpdateBanner(ctx, banner.ID, UpdateBannerInput{Active: ptrBool(false)})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	rows, err := svc.ActiveBanners(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	all, err := svc.ListBanners(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestBannerValidation(t *testing.T) {
	svc := newMarketingService(t, time.Now().UTC())
	ctx := context.Background()

	_, err := svc.CreateBanner(ctx, CreateBannerInput{ImageURL: "https://cdn/x.png"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	start := time.Now()
	_, err = svc.CreateBanner(ctx, CreateBannerInput{
		Title:    "Janela invertida",
		ImageURL: "https://cdn/x.png",
		StartsAt: &start,
		EndsAt:   ptrTime(start.Add(-time.Hour)),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestUpdateBannerFields(t *testing.T) {
	svc := newMarketingService(t, time.Now().UTC())
	ctx := context.Background()

	banner, err := svc.CreateBanner(ctx, CreateBannerInput{Title: "Antes", ImageURL: "https://cdn/old.png"})
	require.NoError(t, err)

	updated, err := svc.UpdateBanner(ctx, banner.ID, UpdateBannerInput{
		Title:    ptrStr("Depois"),
		LinkURL:  ptrStr("https://loja/vinhos"),
		Position: ptrInt(7),
	})
	require.NoError(t, err)
	assert.Equal(t, "Depois", updated.Title)
	assert.Equal(t, 7, updated.Position)
	require.NotNil(t, updated.LinkURL)
	assert.Equal(t, "https://loja/vinhos", *updated.LinkURL)

	_, err = svc.UpdateBanner(ctx, uuid.New(), UpdateBannerInput{Title: ptrStr("x")})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestDeleteBanner(t *testing.T) {
	svc := newMarketingService(t, time.Now().UTC())
	ctx := context.Background()

	banner, err := svc.CreateBanner(ctx, CreateBannerInput{Title: "Tchau", ImageURL: "https://cdn/t.png"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBanner(ctx, banner.ID))

	err = svc.DeleteBanner(ctx, banner.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestActiveEventsOrderedBySoonest(t *testing.T) {
	now := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)
	svc := newMarketingService(t, now)
	ctx := context.Background()

	_, err := svc.CreateEvent(ctx, CreateEventInput{
		Title:    "Degustação de agosto",
		StartsAt: now.Add(60 * 24 * time.Hour),
	})
	require.NoError(t, err)
	_, err = svc.CreateEvent(ctx, CreateEventInput{
		Title:    "Feira de junho",
		StartsAt: now.Add(24 * time.Hour),
		EndsAt:   ptrTime(now.Add(48 * time.Hour)),
	})
	require.NoError(t, err)
	_, err = svc.CreateEvent(ctx, CreateEventInput{
		Title:    "Encerrado",
		StartsAt: now.Add(-72 * time.Hour),
		EndsAt:   ptrTime(now.Add(-48 * time.Hour)),
	})
	require.NoError(t, err)

	rows, err := svc.ActiveEvents(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Feira de junho", rows[0].Title)
	assert.Equal(t, "Degustação de agosto", rows[1].Title)
}

func TestUpdateEventLifecycle(t *testing.T) {
	now := time.Now().UTC()
	svc := newMarketingService(t, now)
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, CreateEventInput{Title: "Noite do vinho", StartsAt: now.Add(time.Hour)})
	require.NoError(t, err)

	updated, err := svc.UpdateEvent(ctx, event.ID, UpdateEventInput{
		Description: ptrStr("Rótulos selecionados"),
		Active:      ptrBool(false),
	})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	rows, err := svc.ActiveEvents(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, svc.DeleteEvent(ctx, event.ID))
	err = svc.DeleteEvent(ctx, event.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
