package store

import (
	"database/sql"
	"fmt"

	"github.com/example/valo-accounts/internal/valo/paths"
)

// Settings is the singleton configuration row.
type Settings struct {
	ActiveAccountID   *int64
	ClientServicePath string
	ClientDataPath    string
	AccountDataRoot   string
	Launched          bool
	CreatedAt         string
	UpdatedAt         string
}

// UpdateSettings carries partial settings changes; nil fields are left
// unchanged.
type UpdateSettings struct {
	ClientServicePath *string
	ClientDataPath    *string
	AccountDataRoot   *string
}

// ActivePaths is the resolved path configuration consumed by the switch
// engine: stored settings with platform defaults applied where unset.
type ActivePaths struct {
	LiveDataPath    string
	AccountDataRoot string
}

// Settings returns the configuration row.
func (s *Store) Settings() (Settings, error) {
	row := s.db.QueryRow(`
		SELECT active_account_id, client_service_path, client_data_path,
		       account_data_path, launched, created_at, updated_at
		FROM settings WHERE id = 1`)

	var (
		active               sql.NullInt64
		service, data, root  sql.NullString
		launched             int64
		createdAt, updatedAt string
	)
	if err := row.Scan(&active, &service, &data, &root, &launched, &createdAt, &updatedAt); err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	out := Settings{
		ClientServicePath: service.String,
		ClientDataPath:    data.String,
		AccountDataRoot:   root.String,
		Launched:          launched != 0,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}
	if active.Valid {
		id := active.Int64
		out.ActiveAccountID = &id
	}
	return out, nil
}

// UpdateSettings applies the non-nil fields and returns the updated row.
func (s *Store) UpdateSettings(upd UpdateSettings) (Settings, error) {
	_, err := s.db.Exec(`
		UPDATE settings
		SET client_service_path = COALESCE(?, client_service_path),
		    client_data_path    = COALESCE(?, client_data_path),
		    account_data_path   = COALESCE(?, account_data_path),
		    updated_at          = datetime('now')
		WHERE id = 1`,
		upd.ClientServicePath, upd.ClientDataPath, upd.AccountDataRoot)
	if err != nil {
		return Settings{}, fmt.Errorf("update settings: %w", err)
	}
	return s.Settings()
}

// SetActiveAccount persists the active-account pointer; nil means the
// unselected sentinel. The switch engine calls this only after the new
// redirection is installed.
func (s *Store) SetActiveAccount(accountID *int64) error {
	if _, err := s.db.Exec(
		`UPDATE settings SET active_account_id = ?, updated_at = datetime('now') WHERE id = 1`,
		accountID); err != nil {
		return fmt.Errorf("persist active account: %w", err)
	}
	return nil
}

// MarkLaunched records that the client has been launched at least once.
func (s *Store) MarkLaunched() error {
	if _, err := s.db.Exec(`UPDATE settings SET launched = 1 WHERE id = 1`); err != nil {
		return fmt.Errorf("mark launched: %w", err)
	}
	return nil
}

// ActivePaths resolves the switch engine's path configuration, applying
// platform defaults for unset settings.
func (s *Store) ActivePaths() (ActivePaths, error) {
	settings, err := s.Settings()
	if err != nil {
		return ActivePaths{}, err
	}

	live := settings.ClientDataPath
	if live == "" {
		live, err = paths.DefaultClientDataPath()
		if err != nil {
			return ActivePaths{}, err
		}
	}

	root := settings.AccountDataRoot
	if root == "" {
		root, err = paths.DefaultAccountDataRoot()
		if err != nil {
			return ActivePaths{}, err
		}
	}

	return ActivePaths{LiveDataPath: live, AccountDataRoot: root}, nil
}

// fillDefaultPaths writes platform defaults into unset path settings so the
// settings command shows concrete values. Runs on every open.
func (s *Store) fillDefaultPaths() error {
	var service, data *string
	if p := paths.DefaultClientServicePath(); p != "" {
		service = &p
	}
	if p, err := paths.DefaultClientDataPath(); err == nil {
		data = &p
	}

	_, err := s.db.Exec(`
		UPDATE settings
		SET client_service_path = COALESCE(client_service_path, ?),
		    client_data_path    = COALESCE(client_data_path, ?)
		WHERE id = 1`,
		service, data)
	if err != nil {
		return fmt.Errorf("apply default paths: %w", err)
	}
	return nil
}
