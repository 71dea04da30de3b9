package rewrite

import (
	"context"
	"errors"
	"fmt"

	"rewrite-manager/core/reconcile"

	"gorm.io/gorm"
)

// Repository persists url_rewrite rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a url_rewrite repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DeleteByEntities removes the canonical rows of ids in one store. Redirect
// rows are kept. An empty id set is a no-op.
func (r *Repository) DeleteByEntities(ctx context.Context, ids []int64, entityType reconcile.EntityType, storeID int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("entity_id IN ? AND entity_type = ? AND store_id = ? AND redirect_type = ?", ids, string(entityType), storeID, 0).
		Delete(&URLRewrite{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete %s rewrites: %w", entityType, res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteBy implements reconcile.RewriteStore.
func (r *Repository) DeleteBy(ctx context.Context, f reconcile.DeleteFilter) (int64, error) {
	return r.DeleteByEntities(ctx, f.EntityIDs, f.EntityType, f.StoreID)
}

// Replace writes records in one transaction. Existing canonical rows of the
// same entities are replaced, and so are their autogenerated redirects on a
// reclaimed path. A request path held by anything else fails the whole batch
// with a CollisionError and nothing is written.
func (r *Repository) Replace(ctx context.Context, records []reconcile.RewriteRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteOwned(tx, records); err != nil {
			return err
		}
		if err := checkCollisions(tx, records); err != nil {
			return err
		}

		rows := make([]URLRewrite, len(records))
		for i, rec := range records {
			rows[i] = fromRecord(rec)
		}
		if err := tx.Create(&rows).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// the index does not say which path collided
				return &CollisionError{StoreID: records[0].StoreID}
			}
			return fmt.Errorf("failed to insert rewrites: %w", err)
		}
		return nil
	})
}

type entityKey struct {
	entityType reconcile.EntityType
	entityID   int64
	storeID    int64
}

// deleteOwned clears the canonical rows of every entity in the batch, plus the
// entity's own autogenerated redirects sitting on a path it is about to reclaim.
// Merchant-created redirects are left for checkCollisions to report.
func deleteOwned(tx *gorm.DB, records []reconcile.RewriteRecord) error {
	paths := make(map[entityKey][]string)
	var order []entityKey
	for _, rec := range records {
		key := entityKey{rec.EntityType, rec.EntityID, rec.StoreID}
		if _, ok := paths[key]; !ok {
			order = append(order, key)
		}
		paths[key] = append(paths[key], rec.RequestPath)
	}

	for _, key := range order {
		err := tx.Where("entity_id = ? AND entity_type = ? AND store_id = ?", key.entityID, string(key.entityType), key.storeID).
			Where("(redirect_type = ? OR (is_autogenerated = ? AND request_path IN ?))", 0, true, paths[key]).
			Delete(&URLRewrite{}).Error
		if err != nil {
			return fmt.Errorf("failed to clear rewrites of %s %d: %w", key.entityType, key.entityID, err)
		}
	}
	return nil
}

// checkCollisions looks for request paths already stored in the target store,
// and for duplicates inside the batch itself.
func checkCollisions(tx *gorm.DB, records []reconcile.RewriteRecord) error {
	byStore := make(map[int64][]string)
	var order []int64
	batch := make(map[string]bool)
	for _, rec := range records {
		key := fmt.Sprintf("%d|%s", rec.StoreID, rec.RequestPath)
		if batch[key] {
			return &CollisionError{
				RequestPath: rec.RequestPath,
				StoreID:     rec.StoreID,
				OwnerType:   string(rec.EntityType),
				OwnerID:     rec.EntityID,
			}
		}
		batch[key] = true
		if _, ok := byStore[rec.StoreID]; !ok {
			order = append(order, rec.StoreID)
		}
		byStore[rec.StoreID] = append(byStore[rec.StoreID], rec.RequestPath)
	}

	for _, storeID := range order {
		var existing []URLRewrite
		err := tx.Select("request_path", "entity_type", "entity_id").
			Where("store_id = ? AND request_path IN ?", storeID, byStore[storeID]).
			Order("url_rewrite_id").
			Find(&existing).Error
		if err != nil {
			return fmt.Errorf("failed to check request paths in store %d: %w", storeID, err)
		}
		if len(existing) > 0 {
			return &CollisionError{
				RequestPath: existing[0].RequestPath,
				StoreID:     storeID,
				OwnerType:   existing[0].EntityType,
				OwnerID:     existing[0].EntityID,
			}
		}
	}
	return nil
}
