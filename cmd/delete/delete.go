// Package deletecmd handles the database backup-and-remove command
package deletecmd

import (
	"wlharvey4/csv-sqlite3/cmd/common"
	"wlharvey4/csv-sqlite3/cmd/root"
	"wlharvey4/csv-sqlite3/internal/container"
	"wlharvey4/csv-sqlite3/internal/fileutils"
	"wlharvey4/csv-sqlite3/internal/logging"

	"github.com/spf13/cobra"
)

// Cmd represents the delete command
var Cmd = &cobra.Command{
	Use:   "delete",
	Short: "Move the database and its CSV and ledger files into the backup directory",
	Long: `Delete renames $WORKDB/<db>.sqlite, every file in $WORKCSV and every ledger
file except the zero file into $WORKBAK/{db,csv,ledger}, each with a
.<unix-millis> suffix. Nothing is removed outright.`,
	Args: cobra.NoArgs,
	Run:  deleteFunc,
}

func deleteFunc(cmd *cobra.Command, args []string) {
	c := root.GetContainer()
	if c == nil {
		root.Log.Fatalf("Container not initialized")
		return
	}

	moved, err := Run(c, root.DatabaseName())
	if err != nil {
		common.Fail(root.Log, "Delete failed", err)
		return
	}
	root.Log.Info("Delete completed successfully!", logging.F(logging.FieldCount, len(moved)))
}

// Run backs up database name and its derived files.
func Run(c *container.Container, name string) ([]fileutils.Moved, error) {
	backup, err := c.NewBackup()
	if err != nil {
		return nil, err
	}
	return backup.Run(name)
}
