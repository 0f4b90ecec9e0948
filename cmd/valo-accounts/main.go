package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/example/valo-accounts/internal/cli"
	"github.com/example/valo-accounts/internal/logging"
	"github.com/example/valo-accounts/internal/valo/junction"
	"github.com/example/valo-accounts/internal/valo/paths"
	"github.com/example/valo-accounts/internal/valo/procwatch"
	"github.com/example/valo-accounts/internal/valo/secret"
	"github.com/example/valo-accounts/internal/valo/store"
	"github.com/example/valo-accounts/internal/valo/switcher"
	"github.com/example/valo-accounts/internal/valo/transfer"
)

const keyFileName = "valo-accounts.key"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var verbosity int

	var db *store.Store
	defer func() {
		if db != nil {
			db.Close()
		}
	}()

	app := &cli.App{
		Prompter:       cli.NewPromptUI(),
		WriteClipboard: clipboard.WriteAll,
	}

	root := cli.NewRootCommand(app, os.Stdout, os.Stderr)
	root.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v, -vv, -vvv)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbosity)

		dbPath, err := paths.DefaultDatabasePath()
		if err != nil {
			return err
		}

		fsys := afero.NewOsFs()
		box := secret.New(fsys, filepath.Join(filepath.Dir(dbPath), keyFileName))

		db, err = store.Open(dbPath, fsys, box, logging.GetLogger("store"))
		if err != nil {
			return err
		}

		junctions := junction.New(logging.GetLogger("junction"))
		mover := transfer.New(fsys, logging.GetLogger("transfer"))

		app.Store = db
		app.Engine = switcher.New(fsys, junctions, mover, db, db, logging.GetLogger("switcher"))
		app.Procs = procwatch.New(logging.GetLogger("procwatch"))
		app.Secrets = box
		return nil
	}

	return root.Execute()
}
