package reconcile

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Render writes a human-readable summary of a run. Write errors are ignored;
// rendering never fails a run.
func Render(w io.Writer, r *BatchResult) {
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(w, format, args...) }

	p("\n=== %s ===\n", r.Job)
	if r.Notice != "" {
		p("%s\n", r.Notice)
	}
	p("Entities Found:       %d\n", r.EntitiesFound)
	if r.DryRun {
		p("Dry-run:              no changes were made\n")
		return
	}
	if r.Cancelled {
		p("Cancelled:            no changes were made\n")
		return
	}
	p("Records Deleted:      %d\n", r.RecordsDeleted)
	p("Records Regenerated:  %d\n", r.RecordsRegenerated)
	if r.PathsRecomputed > 0 || r.PathFailures > 0 {
		p("Paths Recomputed:     %d (%d failed)\n", r.PathsRecomputed, r.PathFailures)
	}
	if !r.FinishedAt.IsZero() {
		p("Execution Time:       %s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	}

	if !r.HasFailures() {
		return
	}
	p("\nCould not regenerate the urls for these %d entities:\n", len(r.Failures))
	for _, f := range r.Failures {
		p("- Store ID %d, %s: %s\n", f.StoreID, f.EntityLabel, f.Message)
		if len(f.AttemptedPaths) > 0 {
			p("    Generated URLs: %s\n", strings.Join(f.AttemptedPaths, ", "))
		}
	}
}

// LogSummary logs the tally of a run with the structured logger.
func LogSummary(l *zap.Logger, r *BatchResult) {
	fields := []zap.Field{
		zap.String("stage", string(r.Stage)),
		zap.Int("entities_found", r.EntitiesFound),
		zap.Int64("records_deleted", r.RecordsDeleted),
		zap.Int("records_regenerated", r.RecordsRegenerated),
		zap.Int("paths_recomputed", r.PathsRecomputed),
		zap.Int("path_failures", r.PathFailures),
		zap.Int("failures", len(r.Failures)),
	}
	if r.HasFailures() {
		l.Warn("Regeneration completed with failures", fields...)
		return
	}
	l.Info("Regeneration report", fields...)
}

// MarshalReport encodes a result as indented JSON for archiving.
func MarshalReport(r *BatchResult) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
