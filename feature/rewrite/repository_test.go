package rewrite

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"rewrite-manager/core/reconcile"
	"rewrite-manager/feature/catalog/catalogtest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupRewriteDB(t *testing.T) *gorm.DB {
	db := catalogtest.NewDB(t, URLRewrite{})
	rows := []URLRewrite{
		{EntityType: "category", EntityID: 10, RequestPath: "shoes.html", TargetPath: "catalog/category/view/id/10", StoreID: 1},
		{EntityType: "category", EntityID: 10, RequestPath: "old-shoes.html", TargetPath: "shoes.html", RedirectType: 301, StoreID: 1, IsAutogenerated: true},
		{EntityType: "category", EntityID: 11, RequestPath: "running-sale.html", TargetPath: "shoes/running.html", RedirectType: 302, StoreID: 1},
		{EntityType: "category", EntityID: 11, RequestPath: "shoes/running.html", TargetPath: "catalog/category/view/id/11", StoreID: 1},
		{EntityType: "category", EntityID: 10, RequestPath: "shoes.html", TargetPath: "catalog/category/view/id/10", StoreID: 2},
		{EntityType: "product", EntityID: 10, RequestPath: "product-ten.html", TargetPath: "catalog/product/view/id/10", StoreID: 1},
		{EntityType: "cms-page", EntityID: 5, RequestPath: "about-us.html", TargetPath: "cms/page/view/page_id/5", StoreID: 1},
	}
	require.NoError(t, db.Create(&rows).Error)
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	return db, mock
}

func countRows(t *testing.T, db *gorm.DB, where string, args ...any) int64 {
	var n int64
	require.NoError(t, db.Model(&URLRewrite{}).Where(where, args...).Count(&n).Error)
	return n
}

func TestDeleteByEntities(t *testing.T) {
	db := setupRewriteDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	deleted, err := repo.DeleteByEntities(ctx, []int64{10, 11}, reconcile.EntityCategory, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	assert.Equal(t, int64(1), countRows(t, db, "request_path = ?", "old-shoes.html"), "redirects survive")
	assert.Equal(t, int64(1), countRows(t, db, "store_id = ? AND entity_type = ?", 2, "category"), "other stores survive")
	assert.Equal(t, int64(1), countRows(t, db, "entity_type = ?", "product"), "other entity types survive")

	t.Run("Idempotent", func(t *testing.T) {
		deleted, err := repo.DeleteByEntities(ctx, []int64{10, 11}, reconcile.EntityCategory, 1)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})
}

func TestDeleteBy_EmptyIDsIssuesNoQuery(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepository(db)

	deleted, err := repo.DeleteBy(context.Background(), reconcile.DeleteFilter{EntityType: reconcile.EntityProduct, StoreID: 1})
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBy_MySQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `url_rewrite` WHERE").
		WithArgs(int64(3), int64(4), "product", int64(1), 0).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()

	deleted, err := repo.DeleteBy(context.Background(), reconcile.DeleteFilter{
		EntityIDs:  []int64{3, 4},
		EntityType: reconcile.EntityProduct,
		StoreID:    1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func categoryRecord(id int64, path string, store int64) reconcile.RewriteRecord {
	return reconcile.RewriteRecord{
		RequestPath:     path,
		TargetPath:      fmt.Sprintf("catalog/category/view/id/%d", id),
		EntityID:        id,
		EntityType:      reconcile.EntityCategory,
		StoreID:         store,
		IsAutogenerated: true,
	}
}

func TestReplace(t *testing.T) {
	db := setupRewriteDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("ReplacesOwnRows", func(t *testing.T) {
		err := repo.Replace(ctx, []reconcile.RewriteRecord{categoryRecord(10, "footwear.html", 1)})
		require.NoError(t, err)
		assert.Equal(t, int64(0), countRows(t, db, "request_path = ? AND store_id = ?", "shoes.html", 1))
		assert.Equal(t, int64(1), countRows(t, db, "request_path = ? AND store_id = ?", "footwear.html", 1))
		assert.Equal(t, int64(1), countRows(t, db, "request_path = ?", "old-shoes.html"))
	})

	t.Run("ReclaimsOwnAutogeneratedRedirect", func(t *testing.T) {
		err := repo.Replace(ctx, []reconcile.RewriteRecord{categoryRecord(10, "old-shoes.html", 1)})
		require.NoError(t, err)
		assert.Equal(t, int64(1), countRows(t, db, "request_path = ? AND store_id = ? AND redirect_type = ?", "old-shoes.html", 1, 0))
		assert.Equal(t, int64(0), countRows(t, db, "request_path = ? AND redirect_type <> ?", "old-shoes.html", 0))
		assert.Equal(t, int64(0), countRows(t, db, "request_path = ?", "footwear.html"))
	})

	t.Run("MerchantRedirectOfSameEntityCollides", func(t *testing.T) {
		err := repo.Replace(ctx, []reconcile.RewriteRecord{categoryRecord(11, "running-sale.html", 1)})
		require.Error(t, err)

		var collision *CollisionError
		require.ErrorAs(t, err, &collision)
		assert.Equal(t, "running-sale.html", collision.RequestPath)
		assert.Equal(t, int64(11), collision.OwnerID)
		assert.Equal(t, int64(1), countRows(t, db, "request_path = ? AND redirect_type = ?", "running-sale.html", 302))
		assert.Equal(t, int64(1), countRows(t, db, "request_path = ?", "shoes/running.html"), "rolled back")
	})

	t.Run("Metadata", func(t *testing.T) {
		rec := reconcile.RewriteRecord{
			RequestPath: "shoes/running/road-runner.html",
			TargetPath:  "catalog/product/view/id/100/category/11",
			EntityID:    100,
			EntityType:  reconcile.EntityProduct,
			StoreID:     1,
			Metadata:    `{"category_id":"11"}`,
		}
		require.NoError(t, repo.Replace(ctx, []reconcile.RewriteRecord{rec}))

		var row URLRewrite
		require.NoError(t, db.Where("entity_id = ? AND entity_type = ?", 100, "product").Take(&row).Error)
		require.NotNil(t, row.Metadata)
		assert.Equal(t, `{"category_id":"11"}`, *row.Metadata)
	})

	t.Run("CollisionWithOtherEntity", func(t *testing.T) {
		err := repo.Replace(ctx, []reconcile.RewriteRecord{
			categoryRecord(12, "trail.html", 1),
			categoryRecord(12, "about-us.html", 1),
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, reconcile.ErrCollision))

		var collision *CollisionError
		require.ErrorAs(t, err, &collision)
		assert.Equal(t, "about-us.html", collision.RequestPath)
		assert.Equal(t, "cms-page", collision.OwnerType)
		assert.Equal(t, int64(5), collision.OwnerID)

		assert.Equal(t, int64(0), countRows(t, db, "request_path = ?", "trail.html"), "batch is atomic")
	})

	t.Run("CollisionInsideBatch", func(t *testing.T) {
		err := repo.Replace(ctx, []reconcile.RewriteRecord{
			categoryRecord(12, "dup.html", 1),
			categoryRecord(20, "dup.html", 1),
		})
		assert.ErrorIs(t, err, reconcile.ErrCollision)
		assert.Equal(t, int64(0), countRows(t, db, "request_path = ?", "dup.html"))
	})

	t.Run("SamePathOtherStore", func(t *testing.T) {
		err := repo.Replace(ctx, []reconcile.RewriteRecord{categoryRecord(20, "about-us.html", 2)})
		assert.NoError(t, err)
	})

	t.Run("Empty", func(t *testing.T) {
		assert.NoError(t, repo.Replace(ctx, nil))
	})
}

func TestReplace_DuplicateKeyIsCollision(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `url_rewrite`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT `request_path`,`entity_type`,`entity_id` FROM `url_rewrite`").
		WillReturnRows(sqlmock.NewRows([]string{"request_path", "entity_type", "entity_id"}))
	mock.ExpectExec("INSERT INTO `url_rewrite`").WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()

	err := repo.Replace(context.Background(), []reconcile.RewriteRecord{categoryRecord(10, "shoes.html", 1)})
	require.Error(t, err)
	assert.ErrorIs(t, err, reconcile.ErrCollision)
	var collision *CollisionError
	require.ErrorAs(t, err, &collision)
	assert.Empty(t, collision.RequestPath)
	assert.Equal(t, "url collision: a request path of the batch already exists in store 1", err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplace_DatabaseErrorIsNotCollision(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `url_rewrite`").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.Replace(context.Background(), []reconcile.RewriteRecord{categoryRecord(10, "shoes.html", 1)})
	require.Error(t, err)
	assert.False(t, errors.Is(err, reconcile.ErrCollision))
	assert.Contains(t, err.Error(), "connection reset")
}
