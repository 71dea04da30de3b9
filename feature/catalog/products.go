package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"rewrite-manager/core/reconcile"
)

// Product visibility classes.
const (
	VisibilityNotVisible = 1
	VisibilityInCatalog  = 2
	VisibilityInSearch   = 3
	VisibilityBoth       = 4
)

// VisibleClasses are the visibilities that get storefront urls.
var VisibleClasses = []int{VisibilityInCatalog, VisibilityInSearch, VisibilityBoth}

type productRow struct {
	EntityID   int64  `gorm:"column:entity_id"`
	SKU        string `gorm:"column:sku"`
	Name       string `gorm:"column:name"`
	URLKey     string `gorm:"column:url_key"`
	Visibility int    `gorm:"column:visibility"`
}

// ProductFilter narrows Products. Empty IDs means every product of the store's website.
type ProductFilter struct {
	IDs          []int64
	Visibilities []int
}

// Products lists the products assigned to the website of store, by id.
func (r *Repository) Products(ctx context.Context, store Store, filter ProductFilter) ([]reconcile.Entity, error) {
	q := r.db.WithContext(ctx).
		Table("catalog_product_entity AS e").
		Joins("JOIN catalog_product_website AS pw ON pw.product_id = e.entity_id AND pw.website_id = ?", store.WebsiteID)

	q, columns, err := r.withValues(ctx, q, productEntityType, store.StoreID,
		eavValue{code: "name", table: "catalog_product_entity_varchar", fallback: "''"},
		eavValue{code: "url_key", table: "catalog_product_entity_varchar", fallback: "''"},
		eavValue{code: "visibility", table: "catalog_product_entity_int", fallback: strconv.Itoa(VisibilityNotVisible)},
	)
	if err != nil {
		return nil, err
	}
	q = q.Select("e.entity_id, e.sku, " + strings.Join(columns, ", "))

	if len(filter.IDs) > 0 {
		q = q.Where("e.entity_id IN ?", filter.IDs)
	}
	if len(filter.Visibilities) > 0 {
		q = q.Where("COALESCE(s_visibility.value, d_visibility.value, ?) IN ?", VisibilityNotVisible, filter.Visibilities)
	}

	var rows []productRow
	if err := q.Order("e.entity_id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load products of store %d: %w", store.StoreID, err)
	}

	entities := make([]reconcile.Entity, len(rows))
	for i, row := range rows {
		entities[i] = reconcile.Entity{
			ID:         row.EntityID,
			Type:       reconcile.EntityProduct,
			Name:       row.Name,
			Label:      row.SKU,
			StoreID:    store.StoreID,
			URLKey:     row.URLKey,
			Visibility: row.Visibility,
		}
	}
	return entities, nil
}

// ProductCategories returns the categories a product is assigned to that can
// carry url paths (level 2 and deeper), by id.
func (r *Repository) ProductCategories(ctx context.Context, productID, storeID int64) ([]reconcile.Entity, error) {
	q, err := r.categoryQuery(ctx, storeID)
	if err != nil {
		return nil, err
	}

	sub := r.db.WithContext(ctx).Table("catalog_category_product").Select("category_id").Where("product_id = ?", productID)
	var rows []categoryRow
	err = q.Where("e.entity_id IN (?) AND e.level > 1", sub).Order("e.entity_id").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load categories of product %d: %w", productID, err)
	}

	entities := make([]reconcile.Entity, len(rows))
	for i, row := range rows {
		entities[i] = row.entity(storeID)
	}
	return entities, nil
}
