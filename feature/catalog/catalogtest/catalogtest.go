// Package catalogtest builds an in-memory Magento catalog for repository and
// adapter tests.
package catalogtest

import (
	"fmt"
	"strings"
	"testing"

	"rewrite-manager/feature/catalog"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Fixture ids. The tree is:
//
//	1 Root Catalog (level 0)
//	└── 2 Default Category (level 1)
//	    ├── 10 Shoes (level 2)
//	    │   └── 11 Running (level 3)
//	    │       └── 12 Trail (level 4)
//	    └── 20 Hats (level 2)
const (
	StoreAdmin   int64 = 0
	StoreDefault int64 = 1
	StoreFrench  int64 = 2

	CategoryRoot    int64 = 1
	CategoryDefault int64 = 2
	CategoryShoes   int64 = 10
	CategoryRunning int64 = 11
	CategoryTrail   int64 = 12
	CategoryHats    int64 = 20

	ProductRoadRunner  int64 = 100
	ProductTrailBlazer int64 = 101
	ProductSunHat      int64 = 102
	ProductNoKey       int64 = 103

	AttrCategoryName    int64 = 45
	AttrCategoryURLKey  int64 = 117
	AttrCategoryURLPath int64 = 118
	AttrProductName     int64 = 73
	AttrProductURLKey   int64 = 121
	AttrVisibility      int64 = 99
)

// NewDB opens a private in-memory SQLite database and migrates the catalog
// tables plus any extra models.
func NewDB(t *testing.T, extra ...any) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(uuid.NewString(), "-", ""))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	models := append(catalog.Models(), extra...)
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// Seed fills db with the fixture catalog. Store 2 (fr) overrides the url key
// of Shoes; the stored url_path of Trail is stale on purpose.
func Seed(t *testing.T, db *gorm.DB) {
	t.Helper()

	stmts := []string{
		`INSERT INTO store (store_id, code, website_id, group_id, name, sort_order, is_active) VALUES
			(0, 'admin', 0, 0, 'Admin', 0, 1),
			(1, 'default', 1, 1, 'Default Store View', 0, 1),
			(2, 'fr', 1, 1, 'French Store View', 1, 1)`,
		`INSERT INTO eav_entity_type (entity_type_id, entity_type_code) VALUES (3, 'catalog_category'), (4, 'catalog_product')`,
		`INSERT INTO eav_attribute (attribute_id, entity_type_id, attribute_code, backend_type) VALUES
			(45, 3, 'name', 'varchar'),
			(117, 3, 'url_key', 'varchar'),
			(118, 3, 'url_path', 'varchar'),
			(73, 4, 'name', 'varchar'),
			(121, 4, 'url_key', 'varchar'),
			(99, 4, 'visibility', 'int')`,
		`INSERT INTO catalog_category_entity (entity_id, parent_id, path, position, level, children_count) VALUES
			(1, 0, '1', 0, 0, 5),
			(2, 1, '1/2', 1, 1, 4),
			(10, 2, '1/2/10', 1, 2, 2),
			(11, 10, '1/2/10/11', 1, 3, 1),
			(12, 11, '1/2/10/11/12', 1, 4, 0),
			(20, 2, '1/2/20', 2, 2, 0)`,
		`INSERT INTO catalog_category_entity_varchar (attribute_id, store_id, entity_id, value) VALUES
			(45, 0, 1, 'Root Catalog'),
			(45, 0, 2, 'Default Category'),
			(45, 0, 10, 'Shoes'),
			(45, 2, 10, 'Chaussures'),
			(45, 0, 11, 'Running'),
			(45, 0, 12, 'Trail'),
			(45, 0, 20, 'Hats'),
			(117, 0, 2, 'default-category'),
			(117, 0, 10, 'shoes'),
			(117, 2, 10, 'chaussures'),
			(117, 0, 11, 'running'),
			(117, 0, 12, 'trail'),
			(117, 0, 20, 'hats'),
			(118, 0, 10, 'shoes'),
			(118, 0, 11, 'shoes/running'),
			(118, 0, 12, 'old/trail'),
			(118, 0, 20, 'hats')`,
		`INSERT INTO catalog_product_entity (entity_id, sku, type_id) VALUES
			(100, 'SHOE-1', 'simple'),
			(101, 'SHOE-2', 'simple'),
			(102, 'HAT-1', 'simple'),
			(103, 'HAT-2', 'simple')`,
		`INSERT INTO catalog_product_entity_varchar (attribute_id, store_id, entity_id, value) VALUES
			(73, 0, 100, 'Road Runner'),
			(73, 0, 101, 'Trail Blazer'),
			(73, 0, 102, 'Sun Hat'),
			(73, 0, 103, 'Wool Beanie XL'),
			(121, 0, 100, 'road-runner'),
			(121, 2, 100, 'coureur'),
			(121, 0, 101, 'trail-blazer'),
			(121, 0, 102, 'sun-hat')`,
		`INSERT INTO catalog_product_entity_int (attribute_id, store_id, entity_id, value) VALUES
			(99, 0, 100, 4),
			(99, 0, 101, 2),
			(99, 0, 102, 1),
			(99, 0, 103, 4)`,
		`INSERT INTO catalog_product_website (product_id, website_id) VALUES (100, 1), (101, 1), (102, 1), (103, 1)`,
		`INSERT INTO catalog_category_product (category_id, product_id, position) VALUES
			(10, 100, 0),
			(11, 100, 1),
			(12, 101, 0),
			(20, 102, 0),
			(2, 103, 0)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("failed to seed catalog: %v", err)
		}
	}
}
