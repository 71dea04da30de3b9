package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"rewrite-manager/core/reconcile"

	"gorm.io/gorm"
)

// AdminStoreID is the global scope; attribute values stored there are the
// defaults every store view inherits.
const AdminStoreID int64 = 0

const (
	categoryEntityType = "catalog_category"
	productEntityType  = "catalog_product"
)

// Repository reads and writes the Magento catalog through gorm.
// Queries stick to portable SQL so the same code runs on MySQL and SQLite.
type Repository struct {
	db         *gorm.DB
	attributes map[string]int64
}

// NewRepository creates a catalog repository on top of a gorm connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, attributes: make(map[string]int64)}
}

// Stores returns every non-admin store ordered by sort order then id.
func (r *Repository) Stores(ctx context.Context) ([]Store, error) {
	var stores []Store
	err := r.db.WithContext(ctx).
		Where("store_id <> ?", AdminStoreID).
		Order("sort_order, store_id").
		Find(&stores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return stores, nil
}

// StoreByID returns a NotFoundError when no store has the given id.
func (r *Repository) StoreByID(ctx context.Context, id int64) (*Store, error) {
	var store Store
	err := r.db.WithContext(ctx).Where("store_id = ?", id).Take(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, reconcile.NewNotFound("store", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load store %d: %w", id, err)
	}
	return &store, nil
}

// StoreByCode returns a NotFoundError when no store has the given code.
func (r *Repository) StoreByCode(ctx context.Context, code string) (*Store, error) {
	var store Store
	err := r.db.WithContext(ctx).Where("code = ?", code).Take(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, reconcile.NewNotFound("store", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load store %q: %w", code, err)
	}
	return &store, nil
}

// ResolveStore accepts a numeric id or a store code.
func (r *Repository) ResolveStore(ctx context.Context, idOrCode string) (*Store, error) {
	idOrCode = strings.TrimSpace(idOrCode)
	if idOrCode == "" {
		return nil, fmt.Errorf("store is required")
	}
	if id, err := strconv.ParseInt(idOrCode, 10, 64); err == nil {
		return r.StoreByID(ctx, id)
	}
	return r.StoreByCode(ctx, idOrCode)
}

// attributeID looks up an EAV attribute id. Results are memoised for the
// lifetime of the repository, which is a single run.
func (r *Repository) attributeID(ctx context.Context, entityTypeCode, attributeCode string) (int64, error) {
	key := entityTypeCode + "/" + attributeCode
	if id, ok := r.attributes[key]; ok {
		return id, nil
	}

	var ids []int64
	err := r.db.WithContext(ctx).
		Table("eav_attribute AS a").
		Joins("JOIN eav_entity_type AS t ON t.entity_type_id = a.entity_type_id").
		Where("t.entity_type_code = ? AND a.attribute_code = ?", entityTypeCode, attributeCode).
		Pluck("a.attribute_id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("failed to look up attribute %s: %w", key, err)
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("attribute %s is not defined", key)
	}

	r.attributes[key] = ids[0]
	return ids[0], nil
}

// eavValue describes one attribute joined into an entity query.
type eavValue struct {
	code     string
	table    string
	fallback string
}

// withValues joins each attribute twice, once at store scope and once at the
// admin scope, and selects the store value when present.
func (r *Repository) withValues(ctx context.Context, q *gorm.DB, entityTypeCode string, storeID int64, values ...eavValue) (*gorm.DB, []string, error) {
	columns := make([]string, 0, len(values))
	for _, v := range values {
		attrID, err := r.attributeID(ctx, entityTypeCode, v.code)
		if err != nil {
			return nil, nil, err
		}
		d, s := "d_"+v.code, "s_"+v.code
		q = q.Joins(fmt.Sprintf("LEFT JOIN %s AS %s ON %s.entity_id = e.entity_id AND %s.attribute_id = ? AND %s.store_id = ?", v.table, d, d, d, d), attrID, AdminStoreID).
			Joins(fmt.Sprintf("LEFT JOIN %s AS %s ON %s.entity_id = e.entity_id AND %s.attribute_id = ? AND %s.store_id = ?", v.table, s, s, s, s), attrID, storeID)
		columns = append(columns, fmt.Sprintf("COALESCE(%s.value, %s.value, %s) AS %s", s, d, v.fallback, v.code))
	}
	return q, columns, nil
}
