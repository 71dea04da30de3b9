package product

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"rewrite-manager/core/reconcile"
	"rewrite-manager/feature/catalog"

	"go.uber.org/zap"
)

// Store is the part of the catalog a product run needs.
type Store interface {
	Stores(ctx context.Context) ([]catalog.Store, error)
	ResolveStore(ctx context.Context, idOrCode string) (*catalog.Store, error)
	Products(ctx context.Context, store catalog.Store, filter catalog.ProductFilter) ([]reconcile.Entity, error)
}

// Adapter regenerates product rewrites for one store or all of them.
type Adapter struct {
	store  Store
	logger *zap.Logger
}

// NewAdapter creates a product adapter. A nil logger discards output.
func NewAdapter(store Store, l *zap.Logger) *Adapter {
	if l == nil {
		l = zap.NewNop()
	}
	return &Adapter{store: store, logger: l}
}

// Name returns the job name used in reports.
func (a *Adapter) Name() string {
	return "product-url"
}

// EntityType returns the rewrite entity type handled by this adapter.
func (a *Adapter) EntityType() reconcile.EntityType {
	return reconcile.EntityProduct
}

// Resolve lists the products of every targeted store, store by store.
func (a *Adapter) Resolve(ctx context.Context, scope reconcile.Scope) (*reconcile.Resolution, error) {
	stores, err := a.stores(ctx, scope.Store)
	if err != nil {
		return nil, err
	}

	filter := catalog.ProductFilter{IDs: scope.EntityIDs}
	if scope.OnlyVisible {
		filter.Visibilities = catalog.VisibleClasses
	}

	var entities []reconcile.Entity
	for _, s := range stores {
		products, err := a.store.Products(ctx, s, filter)
		if err != nil {
			return nil, err
		}
		a.logger.Debug("Resolved store products", zap.String("store", s.Code), zap.Int("products", len(products)))
		entities = append(entities, products...)
	}

	if len(entities) == 0 {
		return &reconcile.Resolution{Notice: "no products found in scope"}, nil
	}
	return &reconcile.Resolution{Entities: entities}, nil
}

// stores maps the store argument to store views. Empty, "0" and the admin
// store mean every view. An unknown code falls back to every view.
func (a *Adapter) stores(ctx context.Context, idOrCode string) ([]catalog.Store, error) {
	idOrCode = strings.TrimSpace(idOrCode)
	if idOrCode == "" || idOrCode == strconv.FormatInt(catalog.AdminStoreID, 10) {
		return a.allStores(ctx)
	}

	store, err := a.store.ResolveStore(ctx, idOrCode)
	if err != nil {
		_, parseErr := strconv.ParseInt(idOrCode, 10, 64)
		if parseErr != nil && reconcile.IsNotFound(err) {
			a.logger.Warn("Unknown store code, regenerating all stores", zap.String("store", idOrCode))
			return a.allStores(ctx)
		}
		return nil, err
	}
	if store.IsAdmin() {
		return a.allStores(ctx)
	}
	return []catalog.Store{*store}, nil
}

func (a *Adapter) allStores(ctx context.Context) ([]catalog.Store, error) {
	stores, err := a.store.Stores(ctx)
	if err != nil {
		return nil, err
	}
	if len(stores) == 0 {
		return nil, fmt.Errorf("no store views configured")
	}
	return stores, nil
}

// Preview prints the products about to be regenerated.
func (a *Adapter) Preview(w io.Writer, entities []reconcile.Entity) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Store\tID\tSKU\tName\tUrl Key")
	for _, e := range entities {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", e.StoreID, e.ID, e.Label, e.Name, e.URLKey)
	}
	_ = tw.Flush()
}
