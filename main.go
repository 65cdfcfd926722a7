package main

import (
	"fmt"
	"os"

	"wlharvey4/csv-sqlite3/cmd/checks"
	cmdconfig "wlharvey4/csv-sqlite3/cmd/config"
	deletecmd "wlharvey4/csv-sqlite3/cmd/delete"
	"wlharvey4/csv-sqlite3/cmd/export"
	"wlharvey4/csv-sqlite3/cmd/normalize"
	"wlharvey4/csv-sqlite3/cmd/root"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(normalize.Cmd)
	root.Cmd.AddCommand(checks.Cmd)
	root.Cmd.AddCommand(export.Cmd)
	root.Cmd.AddCommand(deletecmd.Cmd)
	root.Cmd.AddCommand(cmdconfig.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
