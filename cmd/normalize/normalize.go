// Package normalize handles the bank CSV normalization command
package normalize

import (
	"context"

	"wlharvey4/csv-sqlite3/cmd/common"
	"wlharvey4/csv-sqlite3/cmd/root"
	"wlharvey4/csv-sqlite3/internal/container"
	"wlharvey4/csv-sqlite3/internal/logging"
	"wlharvey4/csv-sqlite3/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	onInsertError string
	maxInflight   int
)

// Cmd represents the normalize command
var Cmd = &cobra.Command{
	Use:     "normalize <acct> <year>",
	Aliases: []string{"csv"},
	Short:   "Normalize a US Bank CSV export into the mirror and the store",
	Long: `Normalize reads $WORKUSB/usb_<acct>/<year>/usb_<acct>--<year>.csv, classifies
every row and appends it to both the CSV mirror and the database.
Rows before a malformed row are kept; the run stops at the malformed row.`,
	Args: cobra.ExactArgs(2),
	Run:  normalizeFunc,
}

func init() {
	Cmd.Flags().StringVar(&onInsertError, "on-insert-error", "", "Store insert failure policy: abort or skip-and-log")
	Cmd.Flags().IntVar(&maxInflight, "max-inflight", 0, "Maximum concurrent store inserts (1 keeps file order)")
}

func normalizeFunc(cmd *cobra.Command, args []string) {
	ctx, stop := common.SignalContext()
	defer stop()

	c := root.GetContainer()
	if c == nil {
		root.Log.Fatalf("Container not initialized")
		return
	}
	policy, err := common.InsertErrorPolicy(onInsertError)
	if err != nil {
		root.Log.Fatalf("Invalid --on-insert-error: %v", err)
		return
	}

	stats, err := Run(ctx, c, root.DatabaseName(), args[0], args[1], container.NormalizeOptions{
		Policy:      policy,
		MaxInFlight: maxInflight,
	})
	if err != nil {
		common.Fail(root.Log, "Normalization failed", err)
		return
	}
	root.Log.Info("Normalization completed successfully!",
		logging.F(logging.FieldRunID, stats.RunID),
		logging.F(logging.FieldCount, stats.Inserted))
}

// Run normalizes the export of acct and year into database name.
func Run(ctx context.Context, c *container.Container, name, acct, year string, opts container.NormalizeOptions) (pipeline.Stats, error) {
	if err := c.ValidateAccountYear(acct, year); err != nil {
		return pipeline.Stats{}, err
	}
	src, err := c.SourcePath(acct, year)
	if err != nil {
		return pipeline.Stats{}, err
	}

	st, err := c.OpenStore(ctx, name)
	if err != nil {
		return pipeline.Stats{}, err
	}
	defer common.Close(st, "store", c.GetLogger())

	p, err := c.NewPipeline(ctx, acct, year, st, opts)
	if err != nil {
		return pipeline.Stats{}, err
	}
	return p.Run(ctx, src)
}
