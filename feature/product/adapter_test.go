package product

import (
	"bytes"
	"context"
	"testing"

	"rewrite-manager/core/config"
	"rewrite-manager/core/reconcile"
	"rewrite-manager/feature/catalog"
	"rewrite-manager/feature/catalog/catalogtest"
	"rewrite-manager/feature/rewrite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func setupAdapter(t *testing.T) (*Adapter, *observer.ObservedLogs, *gorm.DB) {
	db := catalogtest.NewDB(t, rewrite.URLRewrite{})
	catalogtest.Seed(t, db)
	core, logs := observer.New(zap.DebugLevel)
	return NewAdapter(catalog.NewRepository(db), zap.New(core)), logs, db
}

type key struct {
	store int64
	id    int64
}

func keys(entities []reconcile.Entity) []key {
	out := make([]key, len(entities))
	for i, e := range entities {
		out[i] = key{e.StoreID, e.ID}
	}
	return out
}

func TestResolve_AllStores(t *testing.T) {
	a, _, _ := setupAdapter(t)
	ctx := context.Background()

	for _, store := range []string{"", "0", "admin"} {
		res, err := a.Resolve(ctx, reconcile.Scope{Store: store, EntityIDs: []int64{catalogtest.ProductRoadRunner, catalogtest.ProductSunHat}})
		require.NoError(t, err, store)
		assert.Equal(t, []key{{1, 100}, {1, 102}, {2, 100}, {2, 102}}, keys(res.Entities), store)
	}
}

func TestResolve_SingleStore(t *testing.T) {
	a, _, _ := setupAdapter(t)
	ctx := context.Background()

	res, err := a.Resolve(ctx, reconcile.Scope{Store: "fr", EntityIDs: []int64{catalogtest.ProductRoadRunner}})
	require.NoError(t, err)
	require.Len(t, res.Entities, 1)
	assert.Equal(t, catalogtest.StoreFrench, res.Entities[0].StoreID)
	assert.Equal(t, "coureur", res.Entities[0].URLKey)

	res, err = a.Resolve(ctx, reconcile.Scope{Store: "1"})
	require.NoError(t, err)
	assert.Len(t, res.Entities, 4)
}

func TestResolve_OnlyVisible(t *testing.T) {
	a, _, _ := setupAdapter(t)

	res, err := a.Resolve(context.Background(), reconcile.Scope{Store: "1", OnlyVisible: true})
	require.NoError(t, err)
	assert.Equal(t, []key{{1, 100}, {1, 101}, {1, 103}}, keys(res.Entities))
}

func TestResolve_UnknownStore(t *testing.T) {
	a, logs, _ := setupAdapter(t)
	ctx := context.Background()

	t.Run("NumericIsNotFound", func(t *testing.T) {
		_, err := a.Resolve(ctx, reconcile.Scope{Store: "9"})
		assert.True(t, reconcile.IsNotFound(err))
	})

	t.Run("CodeFallsBackToAllStores", func(t *testing.T) {
		res, err := a.Resolve(ctx, reconcile.Scope{Store: "nl", EntityIDs: []int64{catalogtest.ProductRoadRunner}})
		require.NoError(t, err)
		assert.Equal(t, []key{{1, 100}, {2, 100}}, keys(res.Entities))
		assert.Equal(t, 1, logs.FilterMessage("Unknown store code, regenerating all stores").Len())
	})
}

func TestResolve_Empty(t *testing.T) {
	a, _, _ := setupAdapter(t)

	res, err := a.Resolve(context.Background(), reconcile.Scope{Store: "1", EntityIDs: []int64{9999}})
	require.NoError(t, err)
	assert.Empty(t, res.Entities)
	assert.Equal(t, "no products found in scope", res.Notice)
}

func TestPreview(t *testing.T) {
	a, _, _ := setupAdapter(t)
	var buf bytes.Buffer
	a.Preview(&buf, []reconcile.Entity{{ID: 100, StoreID: 1, Label: "SHOE-1", Name: "Road Runner", URLKey: "road-runner"}})

	assert.Contains(t, buf.String(), "Store  ID   SKU     Name         Url Key")
	assert.Contains(t, buf.String(), "1      100  SHOE-1  Road Runner  road-runner")
}

func TestRun_ProductURLs(t *testing.T) {
	a, _, db := setupAdapter(t)
	ctx := context.Background()

	repo := catalog.NewRepository(db)
	spec := &reconcile.Spec{
		Adapter: a,
		Generator: rewrite.NewGenerator(repo, config.Catalog{
			CategoryURLSuffix:    ".html",
			ProductURLSuffix:     ".html",
			ProductUseCategories: true,
		}, nil),
		Rewrites: rewrite.NewRepository(db),
	}

	scope := reconcile.Scope{Store: "0", EntityIDs: []int64{catalogtest.ProductRoadRunner, catalogtest.ProductSunHat}}
	result, err := reconcile.Run(ctx, spec, scope, reconcile.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, result.EntitiesFound)
	assert.Equal(t, 6, result.RecordsRegenerated, "three rewrites per store for Road Runner, none for the hidden hat")
	assert.False(t, result.HasFailures())

	var paths []string
	require.NoError(t, db.Model(&rewrite.URLRewrite{}).Where("store_id = ?", 2).Order("request_path").Pluck("request_path", &paths).Error)
	assert.Equal(t, []string{"coureur.html", "shoes/coureur.html", "shoes/running/coureur.html"}, paths)

	// A second run replaces rather than duplicates.
	result, err = reconcile.Run(ctx, spec, scope, reconcile.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(6), result.RecordsDeleted)
	var total int64
	require.NoError(t, db.Model(&rewrite.URLRewrite{}).Count(&total).Error)
	assert.Equal(t, int64(6), total)
}
