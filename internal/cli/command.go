package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/valo-accounts/internal/valo/layout"
	"github.com/example/valo-accounts/internal/valo/store"
	"github.com/example/valo-accounts/internal/valo/switcher"
)

// Accounts is the persistence surface the commands need.
type Accounts interface {
	Accounts() ([]store.Account, error)
	Account(id int64) (store.Account, error)
	CreateAccount(in store.CreateAccount) (store.Account, error)
	UpdateAccount(upd store.UpdateAccount) (store.Account, error)
	CurrentDataAvailable() (bool, error)
	Settings() (store.Settings, error)
	UpdateSettings(upd store.UpdateSettings) (store.Settings, error)
	ActivePaths() (store.ActivePaths, error)
	MarkLaunched() error
}

// Switcher is the switch engine surface.
type Switcher interface {
	Switch(cfg switcher.Config, accountID *int64) error
	Inspect(cfg switcher.Config) switcher.Status
}

// ProcessControl reports and controls the external client processes.
type ProcessControl interface {
	ClientRunning() bool
	GameRunning() bool
	KillClient() error
	LaunchClient(configuredPath string) error
}

// Decryptor opens stored passwords.
type Decryptor interface {
	Decrypt(sealed []byte) (string, error)
}

// App bundles the collaborators behind the command tree.
type App struct {
	Store    Accounts
	Engine   Switcher
	Procs    ProcessControl
	Secrets  Decryptor
	Prompter Prompter
	// WriteClipboard places text on the system clipboard. Injectable so
	// tests never touch the real clipboard.
	WriteClipboard func(text string) error
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(app *App, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "valo-accounts",
		Short:         "Riot account data switcher",
		Long:          "valo-accounts manages multiple Riot account identities by junction-redirecting the Riot Client's data directory.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.AddCommand(newListCommand(app, stdout))
	cmd.AddCommand(newAddCommand(app, stdout))
	cmd.AddCommand(newSwitchCommand(app, stdout))
	cmd.AddCommand(newStatusCommand(app, stdout))
	cmd.AddCommand(newEditCommand(app, stdout))
	cmd.AddCommand(newCopyPasswordCommand(app, stdout))
	cmd.AddCommand(newClientCommand(app, stdout))
	cmd.AddCommand(newSettingsCommand(app, stdout))

	return cmd
}

func newListCommand(app *App, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts, err := app.Store.Accounts()
			if err != nil {
				return err
			}
			settings, err := app.Store.Settings()
			if err != nil {
				return err
			}

			if len(accounts) == 0 {
				fmt.Fprintln(stdout, "No accounts stored. Use 'valo-accounts add' to create one.")
				return nil
			}

			if app.Procs.ClientRunning() {
				fmt.Fprintln(stdout, "Riot Client is running; switching is unavailable until it exits.")
			}

			activeSeen := false
			for _, account := range accounts {
				prefix := " "
				if settings.ActiveAccountID != nil && account.ID == *settings.ActiveAccountID {
					prefix = "*"
					activeSeen = true
				}
				line := fmt.Sprintf("%s [%d] %s#%s", prefix, account.ID, account.RiotID, account.Tagline)
				if account.Rank != "" {
					line += fmt.Sprintf(" (%s)", account.Rank)
				}
				fmt.Fprintln(stdout, line)
			}
			if settings.ActiveAccountID != nil && !activeSeen {
				fmt.Fprintf(stdout, "! active account %d no longer exists\n", *settings.ActiveAccountID)
			}
			return nil
		},
	}
}

func newAddCommand(app *App, stdout io.Writer) *cobra.Command {
	var in store.CreateAccount

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if in.RiotID == "" {
				if in.RiotID, err = app.Prompter.Prompt("Riot ID"); err != nil {
					return err
				}
			}
			if in.Tagline == "" {
				if in.Tagline, err = app.Prompter.Prompt("Tagline"); err != nil {
					return err
				}
			}
			if in.Password == "" && !cmd.Flags().Changed("password") {
				if in.Password, err = app.Prompter.Secret("Password (empty to skip)"); err != nil {
					return err
				}
			}

			if !cmd.Flags().Changed("use-current-data") {
				available, err := app.Store.CurrentDataAvailable()
				if err != nil {
					return err
				}
				if available {
					in.UseCurrentData, err = app.Prompter.Confirm("Adopt the machine's current client data for this account?", false)
					if err != nil {
						return err
					}
				}
			}

			account, err := app.Store.CreateAccount(in)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Created account [%d] %s#%s (data folder %s)\n",
				account.ID, account.RiotID, account.Tagline, account.DataFolder)

			// Adopting the current data means this account is now the one
			// the live path should point at.
			if in.UseCurrentData {
				if err := runSwitch(app, &account.ID); err != nil {
					return err
				}
				fmt.Fprintf(stdout, "Switched to account [%d]\n", account.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&in.RiotID, "riot-id", "", "Riot ID display name")
	cmd.Flags().StringVar(&in.Tagline, "tagline", "", "Riot ID tagline")
	cmd.Flags().StringVar(&in.Username, "username", "", "Login username")
	cmd.Flags().StringVar(&in.Password, "password", "", "Login password (stored encrypted)")
	cmd.Flags().StringVar(&in.Rank, "rank", "", "Rank label")
	cmd.Flags().BoolVar(&in.UseCurrentData, "use-current-data", false, "Adopt the current client data as this account's data")

	return cmd
}

func newSwitchCommand(app *App, stdout io.Writer) *cobra.Command {
	var toNone bool

	cmd := &cobra.Command{
		Use:   "switch [account-id]",
		Short: "Redirect the client's data directory to an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if toNone {
				if err := runSwitch(app, nil); err != nil {
					return err
				}
				fmt.Fprintln(stdout, "Switched to unselected state.")
				return nil
			}

			var accountID int64
			if len(args) == 1 {
				parsed, err := parseAccountID(args[0])
				if err != nil {
					return err
				}
				accountID = parsed
			} else {
				selected, err := selectAccount(app, "Select account to activate")
				if err != nil {
					return err
				}
				accountID = selected
			}

			if err := runSwitch(app, &accountID); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Switched to account [%d].\n", accountID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&toNone, "none", false, "Switch to the unselected (no account) state")
	return cmd
}

// runSwitch performs the process-status precondition check and invokes the
// engine. The engine itself never reads process state.
func runSwitch(app *App, accountID *int64) error {
	if app.Procs.ClientRunning() {
		return ErrClientRunning
	}
	if app.Procs.GameRunning() {
		return ErrGameRunning
	}

	active, err := app.Store.ActivePaths()
	if err != nil {
		return err
	}
	cfg := switcher.Config{
		LiveDataPath:    active.LiveDataPath,
		AccountDataRoot: active.AccountDataRoot,
	}
	return app.Engine.Switch(cfg, accountID)
}

func newStatusCommand(app *App, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show live path state, redirection target and client status",
		RunE: func(cmd *cobra.Command, args []string) error {
			active, err := app.Store.ActivePaths()
			if err != nil {
				return err
			}
			settings, err := app.Store.Settings()
			if err != nil {
				return err
			}

			status := app.Engine.Inspect(switcher.Config{
				LiveDataPath:    active.LiveDataPath,
				AccountDataRoot: active.AccountDataRoot,
			})

			fmt.Fprintf(stdout, "Live path:      %s\n", active.LiveDataPath)
			fmt.Fprintf(stdout, "State:          %s\n", status.State)
			if status.State == switcher.StateJunction {
				if status.Target != "" {
					fmt.Fprintf(stdout, "Target:         %s\n", status.Target)
				} else {
					fmt.Fprintln(stdout, "Target:         (unresolvable)")
				}
			}

			if settings.ActiveAccountID == nil {
				fmt.Fprintln(stdout, "Active account: none")
			} else {
				fmt.Fprintf(stdout, "Active account: %d\n", *settings.ActiveAccountID)
			}

			if drift := describeDrift(app, settings.ActiveAccountID, status); drift != "" {
				fmt.Fprintf(stdout, "Warning:        %s\n", drift)
			}

			fmt.Fprintf(stdout, "Client running: %t\n", app.Procs.ClientRunning())
			fmt.Fprintf(stdout, "Game running:   %t\n", app.Procs.GameRunning())
			return nil
		},
	}
}

// describeDrift compares the persisted active-account pointer against what
// the live junction actually points at. A crash between junction creation
// and pointer persistence leaves these desynced; the junction is
// authoritative.
func describeDrift(app *App, activeID *int64, status switcher.Status) string {
	if status.State != switcher.StateJunction || status.Target == "" {
		if activeID != nil {
			return "an account is recorded active but the live path is not a resolvable junction; run 'switch' to repair"
		}
		return ""
	}

	expected := ""
	if activeID == nil {
		expected = layout.SentinelFolderName
	} else {
		account, err := app.Store.Account(*activeID)
		if err != nil || account.DataFolder == "" {
			return "recorded active account cannot be resolved"
		}
		expected = account.DataFolder
	}

	if base := filepath.Base(status.Target); base != expected {
		return fmt.Sprintf("live junction points at %q but settings expect %q; the junction is authoritative", base, expected)
	}
	return ""
}

func newEditCommand(app *App, stdout io.Writer) *cobra.Command {
	var (
		riotID, tagline, username, rank, password string
	)

	cmd := &cobra.Command{
		Use:   "edit <account-id>",
		Short: "Update stored account fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountID(args[0])
			if err != nil {
				return err
			}

			upd := store.UpdateAccount{ID: id}
			if cmd.Flags().Changed("riot-id") {
				upd.RiotID = &riotID
			}
			if cmd.Flags().Changed("tagline") {
				upd.Tagline = &tagline
			}
			if cmd.Flags().Changed("username") {
				upd.Username = &username
			}
			if cmd.Flags().Changed("rank") {
				upd.Rank = &rank
			}
			if cmd.Flags().Changed("password") {
				upd.Password = &password
			}

			account, err := app.Store.UpdateAccount(upd)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Updated account [%d] %s#%s\n", account.ID, account.RiotID, account.Tagline)
			return nil
		},
	}

	cmd.Flags().StringVar(&riotID, "riot-id", "", "Riot ID display name")
	cmd.Flags().StringVar(&tagline, "tagline", "", "Riot ID tagline")
	cmd.Flags().StringVar(&username, "username", "", "Login username")
	cmd.Flags().StringVar(&rank, "rank", "", "Rank label")
	cmd.Flags().StringVar(&password, "password", "", "Login password (empty clears it)")

	return cmd
}

func newCopyPasswordCommand(app *App, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "copy-password <account-id>",
		Short: "Copy an account's password to the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountID(args[0])
			if err != nil {
				return err
			}
			account, err := app.Store.Account(id)
			if err != nil {
				return err
			}
			if !account.HasPassword {
				return fmt.Errorf("account %d has no password stored", id)
			}

			password, err := app.Secrets.Decrypt(account.EncryptedPassword)
			if err != nil {
				return err
			}
			if err := app.WriteClipboard(password); err != nil {
				return fmt.Errorf("copy to clipboard: %w", err)
			}
			fmt.Fprintln(stdout, "Password copied to clipboard.")
			return nil
		},
	}
}

func newClientCommand(app *App, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Control the Riot Client process",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "kill",
		Short: "Force-terminate the Riot Client",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Procs.KillClient(); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Riot Client terminated.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "launch",
		Short: "Start the Riot Client",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := app.Store.Settings()
			if err != nil {
				return err
			}
			if err := app.Procs.LaunchClient(settings.ClientServicePath); err != nil {
				return err
			}
			if err := app.Store.MarkLaunched(); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Riot Client launched.")
			return nil
		},
	})

	return cmd
}

func newSettingsCommand(app *App, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect or change stored path configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print stored settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := app.Store.Settings()
			if err != nil {
				return err
			}
			active, err := app.Store.ActivePaths()
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Client service path: %s\n", settings.ClientServicePath)
			fmt.Fprintf(stdout, "Client data path:    %s\n", active.LiveDataPath)
			fmt.Fprintf(stdout, "Account data root:   %s\n", active.AccountDataRoot)
			fmt.Fprintf(stdout, "Launched before:     %t\n", settings.Launched)
			return nil
		},
	})

	var servicePath, dataPath, dataRoot string
	set := &cobra.Command{
		Use:   "set",
		Short: "Update stored settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			upd := store.UpdateSettings{}
			if cmd.Flags().Changed("client-service-path") {
				upd.ClientServicePath = &servicePath
			}
			if cmd.Flags().Changed("client-data-path") {
				upd.ClientDataPath = &dataPath
			}
			if cmd.Flags().Changed("account-data-root") {
				upd.AccountDataRoot = &dataRoot
			}

			if _, err := app.Store.UpdateSettings(upd); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Settings updated.")

			// First-time setup: if the configured live path is still a
			// real directory, convert it into the managed junction layout
			// right away so later switches start from a known state.
			if upd.ClientDataPath == nil && upd.AccountDataRoot == nil {
				return nil
			}
			active, err := app.Store.ActivePaths()
			if err != nil {
				return err
			}
			cfg := switcher.Config{
				LiveDataPath:    active.LiveDataPath,
				AccountDataRoot: active.AccountDataRoot,
			}
			if status := app.Engine.Inspect(cfg); status.State == switcher.StateJunction {
				return nil
			}
			if err := runSwitch(app, nil); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Live data directory converted to the managed layout (unselected state).")
			return nil
		},
	}
	set.Flags().StringVar(&servicePath, "client-service-path", "", "Riot Client executable path")
	set.Flags().StringVar(&dataPath, "client-data-path", "", "Riot Client data directory (the live path)")
	set.Flags().StringVar(&dataRoot, "account-data-root", "", "Root directory for per-account data folders")
	cmd.AddCommand(set)

	return cmd
}

func selectAccount(app *App, label string) (int64, error) {
	accounts, err := app.Store.Accounts()
	if err != nil {
		return 0, err
	}
	if len(accounts) == 0 {
		return 0, fmt.Errorf("no accounts stored; use 'valo-accounts add' first")
	}

	items := make([]string, len(accounts))
	for i, account := range accounts {
		items[i] = fmt.Sprintf("[%d] %s#%s", account.ID, account.RiotID, account.Tagline)
	}

	idx, _, err := app.Prompter.Select(label, items, "")
	if err != nil {
		return 0, err
	}
	return accounts[idx].ID, nil
}

func parseAccountID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid account id %q", arg)
	}
	return id, nil
}
