package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"rewrite-manager/core/reconcile"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrMissingURLKey is returned when a url path cannot be built because a
// category in the chain has no url key.
var ErrMissingURLKey = errors.New("missing url key")

type categoryRow struct {
	EntityID int64  `gorm:"column:entity_id"`
	ParentID int64  `gorm:"column:parent_id"`
	Path     string `gorm:"column:path"`
	Level    int    `gorm:"column:level"`
	Position int    `gorm:"column:position"`
	Name     string `gorm:"column:name"`
	URLKey   string `gorm:"column:url_key"`
	URLPath  string `gorm:"column:url_path"`
}

func (c categoryRow) entity(storeID int64) reconcile.Entity {
	return reconcile.Entity{
		ID:       c.EntityID,
		Type:     reconcile.EntityCategory,
		Name:     c.Name,
		StoreID:  storeID,
		URLKey:   c.URLKey,
		URLPath:  c.URLPath,
		Path:     c.Path,
		Level:    c.Level,
		ParentID: c.ParentID,
	}
}

func (r *Repository) categoryQuery(ctx context.Context, storeID int64) (*gorm.DB, error) {
	q := r.db.WithContext(ctx).Table("catalog_category_entity AS e")
	q, columns, err := r.withValues(ctx, q, categoryEntityType, storeID,
		eavValue{code: "name", table: "catalog_category_entity_varchar", fallback: "''"},
		eavValue{code: "url_key", table: "catalog_category_entity_varchar", fallback: "''"},
		eavValue{code: "url_path", table: "catalog_category_entity_varchar", fallback: "''"},
	)
	if err != nil {
		return nil, err
	}
	return q.Select("e.entity_id, e.parent_id, e.path, e.level, e.position, " + strings.Join(columns, ", ")), nil
}

// Category loads one category with its store-scoped attributes.
func (r *Repository) Category(ctx context.Context, id, storeID int64) (*reconcile.Entity, error) {
	q, err := r.categoryQuery(ctx, storeID)
	if err != nil {
		return nil, err
	}

	var rows []categoryRow
	if err := q.Where("e.entity_id = ?", id).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load category %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, reconcile.NewNotFound("category", id)
	}
	e := rows[0].entity(storeID)
	return &e, nil
}

// Descendants returns the categories below root down to maxLevel, parents
// before children and siblings by position.
func (r *Repository) Descendants(ctx context.Context, root reconcile.Entity, maxLevel int, storeID int64) ([]reconcile.Entity, error) {
	q, err := r.categoryQuery(ctx, storeID)
	if err != nil {
		return nil, err
	}

	var rows []categoryRow
	err = q.Where("e.path LIKE ? AND e.level <= ?", root.Path+"/%", maxLevel).
		Order("e.level, e.position, e.entity_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load descendants of category %d: %w", root.ID, err)
	}

	entities := make([]reconcile.Entity, len(rows))
	for i, row := range rows {
		entities[i] = row.entity(storeID)
	}
	return entities, nil
}

// CategoriesByIDs loads the given categories keyed by id. Unknown ids are skipped.
func (r *Repository) CategoriesByIDs(ctx context.Context, ids []int64, storeID int64) (map[int64]reconcile.Entity, error) {
	out := make(map[int64]reconcile.Entity, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	q, err := r.categoryQuery(ctx, storeID)
	if err != nil {
		return nil, err
	}
	var rows []categoryRow
	if err := q.Where("e.entity_id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	for _, row := range rows {
		out[row.EntityID] = row.entity(storeID)
	}
	return out, nil
}

// CategoryAncestors returns the ancestors of c that take part in url paths
// (level 2 and deeper), outermost first.
func (r *Repository) CategoryAncestors(ctx context.Context, c reconcile.Entity) ([]reconcile.Entity, error) {
	ids, err := pathIDs(c.Path)
	if err != nil {
		return nil, fmt.Errorf("category %d: %w", c.ID, err)
	}
	if len(ids) > 0 && ids[len(ids)-1] == c.ID {
		ids = ids[:len(ids)-1]
	}

	byID, err := r.CategoriesByIDs(ctx, ids, c.StoreID)
	if err != nil {
		return nil, err
	}

	var ancestors []reconcile.Entity
	for _, id := range ids {
		a, ok := byID[id]
		if !ok {
			return nil, reconcile.NewNotFound("category", id)
		}
		if a.Level < 2 {
			continue
		}
		ancestors = append(ancestors, a)
	}
	return ancestors, nil
}

// BuildCategoryURLPath joins the url keys of the ancestor chain and c itself.
// Categories at level 1 or above have no url path.
func (r *Repository) BuildCategoryURLPath(ctx context.Context, c reconcile.Entity) (string, error) {
	if c.Level < 2 {
		return "", nil
	}
	ancestors, err := r.CategoryAncestors(ctx, c)
	if err != nil {
		return "", err
	}

	keys := make([]string, 0, len(ancestors)+1)
	for _, a := range append(ancestors, c) {
		if a.URLKey == "" {
			return "", fmt.Errorf("category %d: %w", a.ID, ErrMissingURLKey)
		}
		keys = append(keys, a.URLKey)
	}
	return strings.Join(keys, "/"), nil
}

// SaveCategoryURLPath stores url_path for a category at the given store scope.
func (r *Repository) SaveCategoryURLPath(ctx context.Context, categoryID, storeID int64, urlPath string) error {
	attrID, err := r.attributeID(ctx, categoryEntityType, "url_path")
	if err != nil {
		return err
	}

	row := CategoryVarchar{
		AttributeID: attrID,
		StoreID:     storeID,
		EntityID:    categoryID,
		Value:       &urlPath,
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entity_id"}, {Name: "attribute_id"}, {Name: "store_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save url_path of category %d: %w", categoryID, err)
	}
	return nil
}

func pathIDs(path string) ([]int64, error) {
	if path == "" {
		return nil, fmt.Errorf("empty category path")
	}
	parts := strings.Split(path, "/")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed category path %q", path)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
