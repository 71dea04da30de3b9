package category

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"rewrite-manager/core/config"
	"rewrite-manager/core/notify"
	"rewrite-manager/core/reconcile"
	"rewrite-manager/feature/catalog"
	"rewrite-manager/feature/catalog/catalogtest"
	"rewrite-manager/feature/rewrite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	events []notify.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev notify.Event) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func setupAdapter(t *testing.T) (*Adapter, *recordingPublisher, *gorm.DB) {
	db := catalogtest.NewDB(t, rewrite.URLRewrite{})
	catalogtest.Seed(t, db)
	pub := &recordingPublisher{}
	a := NewAdapter(catalog.NewRepository(db), pub, nil)
	a.RunID = "run-1"
	return a, pub, db
}

func ids(entities []reconcile.Entity) []int64 {
	out := make([]int64, len(entities))
	for i, e := range entities {
		out[i] = e.ID
	}
	return out
}

func TestResolve(t *testing.T) {
	a, _, _ := setupAdapter(t)
	ctx := context.Background()

	res, err := a.Resolve(ctx, reconcile.Scope{RootID: catalogtest.CategoryShoes, Store: "default"})
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, 12}, ids(res.Entities))
	assert.Empty(t, res.Notice)
	for _, e := range res.Entities {
		assert.Equal(t, catalogtest.StoreDefault, e.StoreID)
	}

	t.Run("Depth", func(t *testing.T) {
		res, err := a.Resolve(ctx, reconcile.Scope{RootID: catalogtest.CategoryShoes, Store: "1", MaxDepth: 1})
		require.NoError(t, err)
		assert.Equal(t, []int64{10, 11}, ids(res.Entities))
	})

	t.Run("NoDescendants", func(t *testing.T) {
		res, err := a.Resolve(ctx, reconcile.Scope{RootID: catalogtest.CategoryHats, Store: "1"})
		require.NoError(t, err)
		assert.Empty(t, res.Entities)
		assert.Equal(t, "no descendants found for Hats", res.Notice)
	})

	t.Run("UnknownRoot", func(t *testing.T) {
		_, err := a.Resolve(ctx, reconcile.Scope{RootID: 999, Store: "1"})
		assert.True(t, reconcile.IsNotFound(err))
	})

	t.Run("UnknownStore", func(t *testing.T) {
		_, err := a.Resolve(ctx, reconcile.Scope{RootID: catalogtest.CategoryShoes, Store: "nl"})
		assert.True(t, reconcile.IsNotFound(err))
	})

	t.Run("AdminStore", func(t *testing.T) {
		_, err := a.Resolve(ctx, reconcile.Scope{RootID: catalogtest.CategoryShoes, Store: "0"})
		assert.ErrorIs(t, err, ErrAdminStore)
	})
}

func TestPreview(t *testing.T) {
	a, _, _ := setupAdapter(t)
	var buf bytes.Buffer
	a.Preview(&buf, []reconcile.Entity{
		{ID: 10, Name: "Shoes", URLKey: "shoes"},
		{ID: 11, Name: "Running", URLKey: "running"},
	})

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Url Key")
	assert.Contains(t, out, "10  Shoes    shoes")
	assert.Contains(t, out, "11  Running  running")
}

func TestRecomputePath(t *testing.T) {
	a, pub, _ := setupAdapter(t)
	ctx := context.Background()

	res, err := a.Resolve(ctx, reconcile.Scope{RootID: catalogtest.CategoryShoes, Store: "1"})
	require.NoError(t, err)
	trail := res.Entities[2]
	require.Equal(t, "old/trail", trail.URLPath)

	path, err := a.RecomputePath(ctx, trail)
	require.NoError(t, err)
	assert.Equal(t, "shoes/running/trail", path)

	reloaded, err := a.store.Category(ctx, trail.ID, trail.StoreID)
	require.NoError(t, err)
	assert.Equal(t, "shoes/running/trail", reloaded.URLPath)

	require.Len(t, pub.events, 1)
	assert.Equal(t, notify.EventPathRegenerated, pub.events[0].Type)
	assert.Equal(t, "run-1", pub.events[0].RunID)
	assert.Equal(t, []int64{trail.ID}, pub.events[0].EntityIDs)
	assert.Equal(t, "shoes/running/trail", pub.events[0].URLPath)

	t.Run("PublishFailureIsNotFatal", func(t *testing.T) {
		pub.err = errors.New("topic gone")
		path, err := a.RecomputePath(ctx, res.Entities[1])
		assert.NoError(t, err)
		assert.Equal(t, "shoes/running", path)
	})

	t.Run("MissingKey", func(t *testing.T) {
		_, err := a.RecomputePath(ctx, reconcile.Entity{ID: 30, Level: 3, Path: "1/2/10/30", StoreID: 1})
		assert.ErrorIs(t, err, catalog.ErrMissingURLKey)
	})
}

func TestRun_CategoryTree(t *testing.T) {
	a, _, db := setupAdapter(t)
	ctx := context.Background()

	stale := []rewrite.URLRewrite{
		{EntityType: "category", EntityID: 12, RequestPath: "old/trail.html", TargetPath: "catalog/category/view/id/12", StoreID: 1},
		{EntityType: "category", EntityID: 12, RequestPath: "trail-old.html", TargetPath: "shoes/running/trail.html", RedirectType: 301, StoreID: 1},
	}
	require.NoError(t, db.Create(&stale).Error)

	repo := catalog.NewRepository(db)
	spec := &reconcile.Spec{
		Adapter:   a,
		Generator: rewrite.NewGenerator(repo, config.Catalog{CategoryURLSuffix: ".html"}, nil),
		Rewrites:  rewrite.NewRepository(db),
	}

	result, err := reconcile.Run(ctx, spec, reconcile.Scope{RootID: catalogtest.CategoryShoes, Store: "default"}, reconcile.RunOptions{RunID: "run-1"})
	require.NoError(t, err)
	assert.Equal(t, reconcile.StageDone, result.Stage)
	assert.Equal(t, 3, result.EntitiesFound)
	assert.Equal(t, 3, result.RecordsRegenerated)
	assert.Equal(t, 3, result.PathsRecomputed)
	assert.Equal(t, int64(1), result.RecordsDeleted)
	assert.False(t, result.HasFailures())

	var paths []string
	require.NoError(t, db.Model(&rewrite.URLRewrite{}).
		Where("entity_type = ? AND store_id = ? AND redirect_type = 0", "category", 1).
		Order("entity_id").
		Pluck("request_path", &paths).Error)
	assert.Equal(t, []string{"shoes.html", "shoes/running.html", "shoes/running/trail.html"}, paths)

	var redirects int64
	require.NoError(t, db.Model(&rewrite.URLRewrite{}).Where("redirect_type = 301").Count(&redirects).Error)
	assert.Equal(t, int64(1), redirects)
}

func TestRun_CollisionIsReported(t *testing.T) {
	a, _, db := setupAdapter(t)
	ctx := context.Background()

	taken := rewrite.URLRewrite{EntityType: "cms-page", EntityID: 7, RequestPath: "shoes/running.html", TargetPath: "cms/page/view/page_id/7", StoreID: 1}
	require.NoError(t, db.Create(&taken).Error)

	repo := catalog.NewRepository(db)
	spec := &reconcile.Spec{
		Adapter:   a,
		Generator: rewrite.NewGenerator(repo, config.Catalog{CategoryURLSuffix: ".html"}, nil),
		Rewrites:  rewrite.NewRepository(db),
	}

	result, err := reconcile.Run(ctx, spec, reconcile.Scope{RootID: catalogtest.CategoryShoes, Store: "1"}, reconcile.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.RecordsRegenerated)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, catalogtest.CategoryRunning, result.Failures[0].EntityID)
	assert.Equal(t, "Running (11)", result.Failures[0].EntityLabel)
	assert.Equal(t, []string{"shoes/running.html"}, result.Failures[0].AttemptedPaths)
}
