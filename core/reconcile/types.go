package reconcile

import (
	"fmt"
	"time"
)

// EntityType tags the catalog entity a rewrite belongs to.
// Values match the entity_type column of url_rewrite.
type EntityType string

const (
	// EntityCategory identifies category rewrites.
	EntityCategory EntityType = "category"
	// EntityProduct identifies product rewrites.
	EntityProduct EntityType = "product"
)

// DefaultMaxDepth is the descendant depth used when a scope does not set one.
const DefaultMaxDepth = 10

// Entity is a read-only snapshot of a catalog node to reconcile.
type Entity struct {
	// ID is unique within the entity type.
	ID   int64      `json:"id"`
	Type EntityType `json:"type"`
	// Name is the display name used in reports.
	Name string `json:"name"`
	// Label is an additional identifier for reports, e.g. the product SKU.
	Label string `json:"label,omitempty"`
	// StoreID is the store view this operation targets.
	StoreID int64  `json:"store_id"`
	URLKey  string `json:"url_key"`
	URLPath string `json:"url_path,omitempty"`

	// Path is the slash separated id chain of a category (e.g. "1/2/10").
	Path     string `json:"path,omitempty"`
	Level    int    `json:"level,omitempty"`
	ParentID int64  `json:"parent_id,omitempty"`

	// Visibility is the product visibility class.
	Visibility int `json:"visibility,omitempty"`
}

// DisplayLabel renders the entity for progress lines and failure reports.
func (e Entity) DisplayLabel() string {
	if e.Label != "" {
		return fmt.Sprintf("%s (%d)", e.Label, e.ID)
	}
	return fmt.Sprintf("%s (%d)", e.Name, e.ID)
}

// Scope is the input contract of one job invocation.
type Scope struct {
	// RootID is the root category of a category tree run.
	RootID int64
	// EntityIDs restricts a product run to explicit ids. Empty means all products.
	EntityIDs []int64
	// OnlyVisible restricts a product run to visible products.
	OnlyVisible bool
	// Store is a numeric store id or a store code.
	Store string
	// MaxDepth bounds the descendant depth of a category tree run.
	MaxDepth int
}

// Depth returns the effective descendant depth (default 10, floor 1).
func (s Scope) Depth() int {
	if s.MaxDepth == 0 {
		return DefaultMaxDepth
	}
	if s.MaxDepth < 1 {
		return 1
	}
	return s.MaxDepth
}

// Resolution is the ordered entity set a scope resolves to.
type Resolution struct {
	Entities []Entity
	// Notice explains an empty resolution, e.g. "no descendants found for Shoes".
	Notice string
}

// RewriteRecord is one canonical URL mapping produced by a Generator.
type RewriteRecord struct {
	RequestPath     string     `json:"request_path"`
	TargetPath      string     `json:"target_path"`
	EntityID        int64      `json:"entity_id"`
	EntityType      EntityType `json:"entity_type"`
	StoreID         int64      `json:"store_id"`
	RedirectType    int        `json:"redirect_type"`
	IsAutogenerated bool       `json:"is_autogenerated"`
	Metadata        string     `json:"metadata,omitempty"`
}

// DeleteFilter selects the rewrite records removed by RewriteStore.DeleteBy.
// Only canonical records (redirect type 0) are ever matched.
type DeleteFilter struct {
	EntityIDs  []int64
	EntityType EntityType
	StoreID    int64
}

// GenerateOptions tunes a single Generate call.
type GenerateOptions struct {
	// ForceRecompute rebuilds the url path from the entity's ancestors instead of
	// trusting the stored attribute.
	ForceRecompute bool
}

// RunOptions controls a job run.
type RunOptions struct {
	// RunID correlates log lines and reports of one run.
	RunID string
	// DryRun stops after the preview; nothing is deleted or written.
	DryRun bool
	// ForceRecompute is passed to every Generate call.
	ForceRecompute bool
	// Confirm is asked after the preview with the number of entities in scope.
	// Returning false ends the run before anything is deleted. Nil means yes.
	Confirm func(entities int) bool
}

// Stage is a state of the job state machine.
type Stage string

const (
	StageScoping      Stage = "scoping"
	StagePreviewing   Stage = "previewing"
	StageInvalidating Stage = "invalidating"
	StageRecomputing  Stage = "recomputing"
	StageRegenerating Stage = "regenerating"
	StageDone         Stage = "done"
)

// Failure records one entity whose rewrites could not be persisted.
type Failure struct {
	EntityID       int64    `json:"entity_id"`
	EntityLabel    string   `json:"entity_label"`
	StoreID        int64    `json:"store_id"`
	Message        string   `json:"message"`
	AttemptedPaths []string `json:"attempted_paths"`
}

// BatchResult accumulates the outcome of a run.
type BatchResult struct {
	RunID string `json:"run_id"`
	Job   string `json:"job"`
	// Stage is the last stage entered before the run ended.
	Stage              Stage     `json:"stage"`
	DryRun             bool      `json:"dry_run"`
	Cancelled          bool      `json:"cancelled,omitempty"`
	Notice             string    `json:"notice,omitempty"`
	EntitiesFound      int       `json:"entities_found"`
	RecordsDeleted     int64     `json:"records_deleted"`
	RecordsRegenerated int       `json:"records_regenerated"`
	PathsRecomputed    int       `json:"paths_recomputed"`
	PathFailures       int       `json:"path_failures"`
	Failures           []Failure `json:"failures"`
	// StoreEntities lists the entity ids invalidated per store.
	StoreEntities map[int64][]int64 `json:"store_entities,omitempty"`
	StartedAt     time.Time         `json:"started_at"`
	FinishedAt    time.Time         `json:"finished_at"`
}

// HasFailures reports whether any entity failed to regenerate.
func (r *BatchResult) HasFailures() bool {
	return len(r.Failures) > 0
}
