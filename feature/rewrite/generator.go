package rewrite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"rewrite-manager/core/config"
	"rewrite-manager/core/reconcile"
	"rewrite-manager/feature/catalog"

	"go.uber.org/zap"
)

// CatalogReader is the part of the catalog the generator needs.
type CatalogReader interface {
	BuildCategoryURLPath(ctx context.Context, c reconcile.Entity) (string, error)
	ProductCategories(ctx context.Context, productID, storeID int64) ([]reconcile.Entity, error)
}

// Generator builds canonical rewrites the way the storefront expects them.
type Generator struct {
	catalog CatalogReader
	cfg     config.Catalog
	logger  *zap.Logger
}

// NewGenerator creates a generator using the url suffixes and category options of cfg.
func NewGenerator(c CatalogReader, cfg config.Catalog, l *zap.Logger) *Generator {
	if l == nil {
		l = zap.NewNop()
	}
	return &Generator{catalog: c, cfg: cfg, logger: l}
}

// Generate implements reconcile.Generator.
func (g *Generator) Generate(ctx context.Context, e reconcile.Entity, opts reconcile.GenerateOptions) ([]reconcile.RewriteRecord, error) {
	switch e.Type {
	case reconcile.EntityCategory:
		return g.category(ctx, e, opts)
	case reconcile.EntityProduct:
		return g.product(ctx, e, opts)
	default:
		return nil, fmt.Errorf("unsupported entity type %q", e.Type)
	}
}

func (g *Generator) category(ctx context.Context, e reconcile.Entity, opts reconcile.GenerateOptions) ([]reconcile.RewriteRecord, error) {
	if e.Level <= 1 {
		return nil, nil
	}

	urlPath, err := g.categoryPath(ctx, e, opts)
	if err != nil {
		return nil, err
	}
	if urlPath == "" {
		g.logger.Warn("Skipping category without url key", zap.Int64("entity_id", e.ID), zap.Int64("store_id", e.StoreID))
		return nil, nil
	}

	return []reconcile.RewriteRecord{{
		RequestPath:     urlPath + g.cfg.CategoryURLSuffix,
		TargetPath:      fmt.Sprintf("catalog/category/view/id/%d", e.ID),
		EntityID:        e.ID,
		EntityType:      reconcile.EntityCategory,
		StoreID:         e.StoreID,
		IsAutogenerated: true,
	}}, nil
}

// categoryPath trusts the stored url_path unless asked to rebuild it or it is empty.
// A chain with a missing url key yields an empty path.
func (g *Generator) categoryPath(ctx context.Context, c reconcile.Entity, opts reconcile.GenerateOptions) (string, error) {
	if c.URLPath != "" && !opts.ForceRecompute {
		return c.URLPath, nil
	}
	p, err := g.catalog.BuildCategoryURLPath(ctx, c)
	if errors.Is(err, catalog.ErrMissingURLKey) {
		return "", nil
	}
	return p, err
}

func (g *Generator) product(ctx context.Context, e reconcile.Entity, opts reconcile.GenerateOptions) ([]reconcile.RewriteRecord, error) {
	if e.Visibility == catalog.VisibilityNotVisible {
		return nil, nil
	}

	urlKey := e.URLKey
	if urlKey == "" {
		urlKey = FormatURLKey(e.Name)
	}
	if urlKey == "" {
		g.logger.Warn("Skipping product without url key or name", zap.Int64("entity_id", e.ID), zap.Int64("store_id", e.StoreID))
		return nil, nil
	}

	records := []reconcile.RewriteRecord{{
		RequestPath:     urlKey + g.cfg.ProductURLSuffix,
		TargetPath:      fmt.Sprintf("catalog/product/view/id/%d", e.ID),
		EntityID:        e.ID,
		EntityType:      reconcile.EntityProduct,
		StoreID:         e.StoreID,
		IsAutogenerated: true,
	}}
	if !g.cfg.ProductUseCategories {
		return records, nil
	}

	categories, err := g.catalog.ProductCategories(ctx, e.ID, e.StoreID)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		if c.Level <= 1 {
			continue
		}
		catPath, err := g.categoryPath(ctx, c, opts)
		if err != nil {
			return nil, err
		}
		if catPath == "" {
			continue
		}
		meta, err := json.Marshal(map[string]string{"category_id": fmt.Sprint(c.ID)})
		if err != nil {
			return nil, err
		}
		records = append(records, reconcile.RewriteRecord{
			RequestPath:     catPath + "/" + urlKey + g.cfg.ProductURLSuffix,
			TargetPath:      fmt.Sprintf("catalog/product/view/id/%d/category/%d", e.ID, c.ID),
			EntityID:        e.ID,
			EntityType:      reconcile.EntityProduct,
			StoreID:         e.StoreID,
			IsAutogenerated: true,
			Metadata:        string(meta),
		})
	}
	return records, nil
}

var nonURLChars = regexp.MustCompile(`[^a-z0-9]+`)

// FormatURLKey derives a url key from a display name: lowercase, runs of
// anything but letters and digits become a single dash.
func FormatURLKey(name string) string {
	key := nonURLChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(key, "-")
}
