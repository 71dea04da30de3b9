package category

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"rewrite-manager/core/notify"
	"rewrite-manager/core/reconcile"
	"rewrite-manager/feature/catalog"

	"go.uber.org/zap"
)

// ErrAdminStore is returned when a tree run targets the admin store. Category
// url paths are stored per store view, so a concrete view is required.
var ErrAdminStore = errors.New("store id missing: the admin store cannot be regenerated, pass a store view")

// Store is the part of the catalog a category tree run needs.
type Store interface {
	ResolveStore(ctx context.Context, idOrCode string) (*catalog.Store, error)
	Category(ctx context.Context, id, storeID int64) (*reconcile.Entity, error)
	Descendants(ctx context.Context, root reconcile.Entity, maxLevel int, storeID int64) ([]reconcile.Entity, error)
	BuildCategoryURLPath(ctx context.Context, c reconcile.Entity) (string, error)
	SaveCategoryURLPath(ctx context.Context, categoryID, storeID int64, urlPath string) error
}

// Adapter regenerates the rewrites of a category and everything below it.
type Adapter struct {
	store     Store
	publisher notify.Publisher
	logger    *zap.Logger

	// RunID is attached to published notifications.
	RunID string
}

// NewAdapter creates a category tree adapter. A nil logger discards output.
func NewAdapter(store Store, publisher notify.Publisher, l *zap.Logger) *Adapter {
	if l == nil {
		l = zap.NewNop()
	}
	if publisher == nil {
		publisher = notify.NewLogPublisher(l)
	}
	return &Adapter{store: store, publisher: publisher, logger: l}
}

// Name returns the job name used in reports.
func (a *Adapter) Name() string {
	return "category-tree"
}

// EntityType returns the rewrite entity type handled by this adapter.
func (a *Adapter) EntityType() reconcile.EntityType {
	return reconcile.EntityCategory
}

// Resolve returns the root followed by its descendants down to the scope depth.
// A root without descendants yields an empty resolution.
func (a *Adapter) Resolve(ctx context.Context, scope reconcile.Scope) (*reconcile.Resolution, error) {
	store, err := a.store.ResolveStore(ctx, scope.Store)
	if err != nil {
		return nil, err
	}
	if store.IsAdmin() {
		return nil, ErrAdminStore
	}

	root, err := a.store.Category(ctx, scope.RootID, store.StoreID)
	if err != nil {
		return nil, err
	}

	descendants, err := a.store.Descendants(ctx, *root, root.Level+scope.Depth(), store.StoreID)
	if err != nil {
		return nil, err
	}
	if len(descendants) == 0 {
		return &reconcile.Resolution{Notice: fmt.Sprintf("no descendants found for %s", root.Name)}, nil
	}

	a.logger.Info("Resolved category tree",
		zap.String("root", root.DisplayLabel()),
		zap.String("store", store.Code),
		zap.Int("descendants", len(descendants)),
	)
	return &reconcile.Resolution{Entities: append([]reconcile.Entity{*root}, descendants...)}, nil
}

// Preview prints the categories about to be regenerated.
func (a *Adapter) Preview(w io.Writer, entities []reconcile.Entity) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tName\tUrl Key")
	for _, e := range entities {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", e.ID, e.Name, e.URLKey)
	}
	_ = tw.Flush()
}

// RecomputePath rebuilds url_path from the ancestor chain, stores it at the
// entity's store scope and announces the change.
func (a *Adapter) RecomputePath(ctx context.Context, e reconcile.Entity) (string, error) {
	if e.Level < 2 {
		return e.URLPath, nil
	}

	path, err := a.store.BuildCategoryURLPath(ctx, e)
	if err != nil {
		return "", err
	}
	if err := a.store.SaveCategoryURLPath(ctx, e.ID, e.StoreID, path); err != nil {
		return "", err
	}

	ev := notify.Event{
		Type:       notify.EventPathRegenerated,
		RunID:      a.RunID,
		EntityType: string(reconcile.EntityCategory),
		StoreID:    e.StoreID,
		EntityIDs:  []int64{e.ID},
		URLPath:    path,
	}
	if err := a.publisher.Publish(ctx, ev); err != nil {
		a.logger.Warn("Failed to publish url path notification", zap.Int64("entity_id", e.ID), zap.Error(err))
	}
	return path, nil
}
