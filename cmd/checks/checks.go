// Package checks handles the work-log check correlation command
package checks

import (
	"context"

	"wlharvey4/csv-sqlite3/cmd/common"
	"wlharvey4/csv-sqlite3/cmd/root"
	chk "wlharvey4/csv-sqlite3/internal/checks"
	"wlharvey4/csv-sqlite3/internal/container"
	"wlharvey4/csv-sqlite3/internal/models"

	"github.com/spf13/cobra"
)

var onInsertError string

// Cmd represents the checks command
var Cmd = &cobra.Command{
	Use:   "checks <year>",
	Short: "Load checks from the work log into the checks table",
	Long: `Checks scans $WORKLOG/worklog.<year>.otl for check entries and inserts the
ones whose check number is not yet stored for that year. Running it again
inserts nothing new.`,
	Args: cobra.ExactArgs(1),
	Run:  checksFunc,
}

func init() {
	Cmd.Flags().StringVar(&onInsertError, "on-insert-error", "", "Store insert failure policy: abort or skip-and-log")
}

func checksFunc(cmd *cobra.Command, args []string) {
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

	if _, err := Run(ctx, c, root.DatabaseName(), args[0], policy); err != nil {
		common.Fail(root.Log, "Check correlation failed", err)
	}
}

// Run correlates the work-log checks of year into database name.
func Run(ctx context.Context, c *container.Container, name, year string, policy models.InsertErrorPolicy) (chk.Result, error) {
	if err := c.GetRegistry().ValidateYear(year); err != nil {
		return chk.Result{}, err
	}
	if err := c.GetConfig().RequireDirs("paths.worklog"); err != nil {
		return chk.Result{}, err
	}

	st, err := c.OpenStore(ctx, name)
	if err != nil {
		return chk.Result{}, err
	}
	defer common.Close(st, "store", c.GetLogger())

	correlator, err := c.NewCorrelator(st, policy)
	if err != nil {
		return chk.Result{}, err
	}
	return correlator.Run(ctx, year)
}
