package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"rewrite-manager/core/reconcile"
	"rewrite-manager/feature/catalog"
	"rewrite-manager/feature/category"
	"rewrite-manager/feature/product"
	"rewrite-manager/feature/rewrite"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// jobFlags are shared by every regenerate subcommand.
type jobFlags struct {
	store          string
	reindex        bool
	flush          bool
	dryRun         bool
	json           bool
	strict         bool
	forceRecompute bool
	confirm        bool
	yes            bool
}

var (
	treeFlags    jobFlags
	categoryID   int64
	treeDepth    int
	productFlags jobFlags
	onlyVisible  bool
)

// regenerateCmd is the parent command for all regeneration jobs.
var regenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Regenerate catalog URL rewrites",
	Long: `Delete and rebuild the canonical URL rewrites (redirect type 0) of catalog entities.
Permanent redirects are never touched. URLs that collide with an existing rewrite
are reported and skipped; the rest of the batch continues.`,
}

var categoryTreeCmd = &cobra.Command{
	Use:   "category-tree",
	Short: "Regenerate the url paths and rewrites of a category and its descendants",
	Long: `Regenerate a whole category subtree in one store view.

The url_path attribute of every category is rebuilt from the url keys of its
ancestors first, then the rewrites of the subtree are regenerated.

Examples:
  # Preview the categories below 10 without changing anything
  regenerate category-tree --category 10 --store default --dry-run

  # Regenerate three levels deep and request a reindex
  regenerate category-tree --category 10 --store 1 --depth 3 --reindex

  # Review the preview and type 'yes' before anything is deleted
  regenerate category-tree --category 10 --store 1 --confirm`,
	Args: cobra.NoArgs,
	RunE: runCategoryTree,
}

var productURLCmd = &cobra.Command{
	Use:   "product-url [product ids...]",
	Short: "Regenerate product rewrites",
	Long: `Regenerate the rewrites of the given products, or of every product when no id is
passed. Store 0 (the default) processes every store view.

Examples:
  # Every visible product of every store view
  regenerate product-url --only-visible

  # Two products in the French store, with a JSON report
  regenerate product-url 100 101 --store fr --json`,
	RunE: runProductURL,
}

func addJobFlags(cmd *cobra.Command, f *jobFlags) {
	cmd.Flags().BoolVar(&f.reindex, "reindex", false, "Request a reindex of the regenerated entities")
	cmd.Flags().BoolVar(&f.flush, "flush", false, "Flush cached rewrites after the run")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Resolve and preview the scope without changing anything")
	cmd.Flags().BoolVar(&f.json, "json", false, "Write a JSON report of the run")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Exit with status 2 when any entity failed")
	cmd.Flags().BoolVar(&f.confirm, "confirm", false, "Ask for confirmation after the preview, before anything is deleted")
	cmd.Flags().BoolVar(&f.yes, "yes", false, "Auto-confirm the --confirm prompt (non-interactive)")
}

func init() {
	// Flags for category-tree
	addJobFlags(categoryTreeCmd, &treeFlags)
	categoryTreeCmd.Flags().Int64Var(&categoryID, "category", 0, "Root category id")
	categoryTreeCmd.Flags().StringVar(&treeFlags.store, "store", "", "Store view id or code")
	categoryTreeCmd.Flags().IntVar(&treeDepth, "depth", 0, "Levels below the root to include (default catalog.max_depth)")
	_ = categoryTreeCmd.MarkFlagRequired("category")
	_ = categoryTreeCmd.MarkFlagRequired("store")

	// Flags for product-url
	addJobFlags(productURLCmd, &productFlags)
	productURLCmd.Flags().StringVar(&productFlags.store, "store", "0", "Store view id or code; 0 means every store view")
	productURLCmd.Flags().BoolVar(&onlyVisible, "only-visible", false, "Skip products that are not visible individually")
	productURLCmd.Flags().BoolVar(&productFlags.forceRecompute, "force-recompute", false, "Rebuild category url paths from url keys instead of the stored values")

	// Add regenerate to root
	regenerateCmd.AddCommand(categoryTreeCmd, productURLCmd)
	RootCmd.AddCommand(regenerateCmd)
}

func runCategoryTree(cmd *cobra.Command, args []string) error {
	if categoryID <= 0 {
		return fmt.Errorf("--category must be a positive id")
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	a, err := newApp(ctx, "category-tree")
	if err != nil {
		return err
	}
	defer a.Close()
	a.stdin = cmd.InOrStdin()

	depth := treeDepth
	if depth == 0 {
		depth = a.cfg.Catalog.MaxDepth
	}

	adapter := category.NewAdapter(catalog.NewRepository(a.db), a.publisher, a.logger)
	adapter.RunID = a.runID

	scope := reconcile.Scope{RootID: categoryID, Store: treeFlags.store, MaxDepth: depth}
	return runJob(ctx, a, adapter, scope, treeFlags, cmd.OutOrStdout())
}

func runProductURL(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	a, err := newApp(ctx, "product-url")
	if err != nil {
		return err
	}
	defer a.Close()
	a.stdin = cmd.InOrStdin()

	adapter := product.NewAdapter(catalog.NewRepository(a.db), a.logger)
	scope := reconcile.Scope{EntityIDs: ids, OnlyVisible: onlyVisible, Store: productFlags.store}
	return runJob(ctx, a, adapter, scope, productFlags, cmd.OutOrStdout())
}

// runJob executes one regeneration run and its follow-up actions.
func runJob(ctx context.Context, a *app, adapter reconcile.Adapter, scope reconcile.Scope, f jobFlags, out io.Writer) error {
	// Step 0: refuse to run against a url_rewrite table missing required columns
	if err := rewrite.VerifySchema(a.db); err != nil {
		return err
	}

	// Build spec
	repo := catalog.NewRepository(a.db)
	spec := &reconcile.Spec{
		Adapter:   adapter,
		Generator: rewrite.NewGenerator(repo, a.cfg.Catalog, a.logger),
		Rewrites:  rewrite.NewRepository(a.db),
		Locker:    a.locker,
		Logger:    a.logger,
		Output:    out,
	}

	// Build run options
	opts := reconcile.RunOptions{
		RunID:          a.runID,
		DryRun:         f.dryRun,
		ForceRecompute: f.forceRecompute,
	}
	// The prompt only runs after the preview has been printed.
	if f.confirm {
		opts.Confirm = confirmDestructiveAction(a.stdin, out, f.yes)
	}

	a.logger.Info("Starting regeneration", zap.String("store", scope.Store), zap.Bool("dry_run", f.dryRun))
	// Step 1: resolve, preview, invalidate and regenerate
	result, err := reconcile.Run(ctx, spec, scope, opts)

	// Step 2: report, even for a run that stopped halfway
	if result != nil {
		reconcile.Render(out, result)
		reconcile.LogSummary(a.logger, result)
		if f.json {
			a.exportReport(ctx, result)
		}
	}
	if err != nil {
		return err
	}

	// Step 3: follow-ups only when something was invalidated
	if !result.DryRun && len(result.StoreEntities) > 0 {
		if f.reindex {
			a.requestReindex(ctx, adapter.EntityType(), result)
		}
		if f.flush {
			a.flushCache(ctx)
		}
	}

	if f.strict && result.HasFailures() {
		return &ExitError{Code: 2, Err: fmt.Errorf("%d entities could not be regenerated", len(result.Failures))}
	}
	return nil
}

// confirmDestructiveAction prompts for confirmation or uses the --yes flag.
func confirmDestructiveAction(in io.Reader, out io.Writer, yes bool) func(int) bool {
	return func(entities int) bool {
		if yes {
			_, _ = fmt.Fprintln(out, "\nAuto-confirmed via --yes flag")
			return true
		}

		_, _ = fmt.Fprintf(out, "\nType 'yes' to delete and regenerate the rewrites of %d entities: ", entities)
		response, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return false
		}
		return strings.TrimSpace(response) == "yes"
	}
}

// parseIDs converts positional product ids. Every id must be a positive integer.
func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid product id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
