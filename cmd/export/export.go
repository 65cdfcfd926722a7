// Package export handles the export and ledger conversion command
package export

import (
	"context"
	"time"

	"wlharvey4/csv-sqlite3/cmd/common"
	"wlharvey4/csv-sqlite3/cmd/root"
	"wlharvey4/csv-sqlite3/internal/container"
	"wlharvey4/csv-sqlite3/internal/ledger"
	"wlharvey4/csv-sqlite3/internal/logging"

	"github.com/spf13/cobra"
)

var (
	exportName string
	skipLedger bool
)

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export <acct> <year>",
	Short: "Export an account/year slice of the database and convert it with ledger",
	Long: `Export appends every stored transaction of the account and year to
$WORKCSV/<name>.csv, in insertion order, then runs ledger convert on it and
appends the journal to $WORKLEDGER/<name>.exported.ledger.
A failing ledger run is logged and does not fail the export.`,
	Args: cobra.ExactArgs(2),
	Run:  exportFunc,
}

func init() {
	Cmd.Flags().StringVar(&exportName, "name", "", "Export base name (default database name)")
	Cmd.Flags().BoolVar(&skipLedger, "skip-ledger", false, "Only write the export CSV")
}

// Options tune one export.
type Options struct {
	Name       string    // export base name; empty uses the database name
	SkipLedger bool      // skip the ledger conversion
	Now        time.Time // ledger --now; zero means today
}

// Result reports what an export produced.
type Result struct {
	Rows       int
	ExportPath string
	Ledger     *ledger.Result // nil when skipped or not run
}

func exportFunc(cmd *cobra.Command, args []string) {
	ctx, stop := common.SignalContext()
	defer stop()

	c := root.GetContainer()
	if c == nil {
		root.Log.Fatalf("Container not initialized")
		return
	}

	res, err := Run(ctx, c, root.DatabaseName(), args[0], args[1], Options{Name: exportName, SkipLedger: skipLedger})
	if err != nil {
		common.Fail(root.Log, "Export failed", err)
		return
	}
	root.Log.Info("Export completed successfully!",
		logging.F(logging.FieldOutputFile, res.ExportPath),
		logging.F(logging.FieldCount, res.Rows))
}

// Run exports acct/year from database name and converts the export with ledger.
func Run(ctx context.Context, c *container.Container, name, acct, year string, opts Options) (Result, error) {
	var res Result
	if err := c.ValidateAccountYear(acct, year); err != nil {
		return res, err
	}
	if opts.Name == "" {
		opts.Name = name
	}

	path, err := c.ExportPath(opts.Name)
	if err != nil {
		return res, err
	}
	res.ExportPath = path

	st, err := c.OpenStore(ctx, name)
	if err != nil {
		return res, err
	}
	defer common.Close(st, "store", c.GetLogger())

	res.Rows, err = c.NewExporter(st).Export(ctx, acct, year, path)
	if err != nil {
		return res, err
	}
	if opts.SkipLedger {
		return res, nil
	}

	converter, err := c.NewLedgerConverter()
	if err != nil {
		return res, err
	}
	accountName, _ := c.GetRegistry().Name(acct)
	lr, err := converter.Convert(ctx, ledger.Request{
		CSVPath:     path,
		AccountName: accountName,
		Name:        opts.Name,
		Now:         opts.Now,
	})
	if err != nil {
		c.GetLogger().WithError(err).Warn("Ledger conversion did not run")
		return res, nil
	}
	res.Ledger = &lr
	return res, nil
}
