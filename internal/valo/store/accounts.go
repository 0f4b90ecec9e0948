package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/example/valo-accounts/internal/valo/layout"
	"github.com/example/valo-accounts/internal/valo/validate"
)

// ErrNoDataFolder indicates an account record without an assigned data
// folder, which only legacy databases can contain.
var ErrNoDataFolder = errors.New("account has no data directory assigned")

// Account is one stored account identity. DataFolder is assigned once at
// creation and never changes for the account's lifetime.
type Account struct {
	ID                int64
	RiotID            string
	Tagline           string
	Username          string
	EncryptedPassword []byte
	HasPassword       bool
	Rank              string
	DataFolder        string
	CreatedAt         string
	UpdatedAt         string
}

// CreateAccount carries the fields for a new account. UseCurrentData adopts
// the sentinel folder's contents as the new account's data instead of
// starting empty.
type CreateAccount struct {
	RiotID         string
	Tagline        string
	Username       string
	Password       string
	Rank           string
	UseCurrentData bool
}

// UpdateAccount carries partial account changes; nil fields are left
// unchanged. A non-nil empty Password clears the stored password.
type UpdateAccount struct {
	ID       int64
	RiotID   *string
	Tagline  *string
	Username *string
	Password *string
	Rank     *string
}

const accountColumns = `id, riot_id, tagline, username, encrypted_password, rank, data_folder, created_at, updated_at`

// CreateAccount inserts the account, assigns its permanent data folder name
// and creates the folder on disk. In adopt mode the sentinel folder is
// renamed into the new account folder so the machine's current data becomes
// the account's data.
func (s *Store) CreateAccount(in CreateAccount) (Account, error) {
	riotID, err := validate.RiotID(in.RiotID)
	if err != nil {
		return Account{}, err
	}
	tagline, err := validate.Tagline(in.Tagline)
	if err != nil {
		return Account{}, err
	}

	s.logger.Info().
		Str("riot_id", riotID).
		Str("tagline", tagline).
		Bool("use_current_data", in.UseCurrentData).
		Msg("creating account")

	// Never nil: the column is NOT NULL and a nil slice binds as SQL NULL.
	encrypted := []byte{}
	if in.Password != "" {
		encrypted, err = s.enc.Encrypt(in.Password)
		if err != nil {
			return Account{}, fmt.Errorf("encrypt password: %w", err)
		}
	}

	res, err := s.db.Exec(`
		INSERT INTO accounts (riot_id, tagline, username, encrypted_password, rank, data_folder)
		VALUES (?, ?, ?, ?, ?, NULL)`,
		riotID, tagline, nullable(in.Username), encrypted, nullable(in.Rank))
	if err != nil {
		return Account{}, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Account{}, fmt.Errorf("read inserted id: %w", err)
	}

	folder := layout.FolderNameFor(id, s.nowFunc())
	if _, err := s.db.Exec(`UPDATE accounts SET data_folder = ? WHERE id = ?`, folder, id); err != nil {
		return Account{}, fmt.Errorf("assign data folder: %w", err)
	}

	if err := s.materializeFolder(folder, in.UseCurrentData); err != nil {
		return Account{}, err
	}

	s.logger.Info().Int64("id", id).Str("folder", folder).Msg("account created")
	return s.Account(id)
}

// materializeFolder creates the account's folder under the account data
// root, adopting the sentinel folder's contents when requested.
func (s *Store) materializeFolder(folder string, useCurrentData bool) error {
	active, err := s.ActivePaths()
	if err != nil {
		return err
	}
	accountPath := layout.AccountPath(active.AccountDataRoot, folder)

	if useCurrentData {
		sentinel := layout.SentinelPath(active.AccountDataRoot)
		if ok, err := afero.DirExists(s.fs, sentinel); err != nil {
			return fmt.Errorf("inspect sentinel folder: %w", err)
		} else if ok {
			s.logger.Info().Str("from", sentinel).Str("to", accountPath).Msg("adopting current data")
			if err := s.fs.Rename(sentinel, accountPath); err != nil {
				return fmt.Errorf("adopt sentinel folder: %w", err)
			}
			return nil
		}
		s.logger.Warn().Str("sentinel", sentinel).Msg("sentinel folder missing, creating empty account folder")
	}

	return layout.EnsureMarkedDir(s.fs, accountPath)
}

// Account returns one account by id.
func (s *Store) Account(id int64) (Account, error) {
	row := s.db.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, fmt.Errorf("account %d not found", id)
	}
	if err != nil {
		return Account{}, fmt.Errorf("read account %d: %w", id, err)
	}
	return account, nil
}

// Accounts returns all accounts in creation order.
func (s *Store) Accounts() ([]Account, error) {
	rows, err := s.db.Query(`SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// UpdateAccount applies the non-nil fields and returns the updated record.
// The data folder is deliberately not updatable.
func (s *Store) UpdateAccount(upd UpdateAccount) (Account, error) {
	if upd.RiotID != nil {
		trimmed, err := validate.RiotID(*upd.RiotID)
		if err != nil {
			return Account{}, err
		}
		upd.RiotID = &trimmed
	}
	if upd.Tagline != nil {
		trimmed, err := validate.Tagline(*upd.Tagline)
		if err != nil {
			return Account{}, err
		}
		upd.Tagline = &trimmed
	}

	// An empty (non-nil) password clears the stored one; keep the bound
	// value an empty blob, never nil, to satisfy the NOT NULL column.
	encrypted := []byte{}
	if upd.Password != nil && *upd.Password != "" {
		var err error
		encrypted, err = s.enc.Encrypt(*upd.Password)
		if err != nil {
			return Account{}, fmt.Errorf("encrypt password: %w", err)
		}
	}

	_, err := s.db.Exec(`
		UPDATE accounts
		SET riot_id  = COALESCE(?, riot_id),
		    tagline  = COALESCE(?, tagline),
		    username = COALESCE(?, username),
		    rank     = COALESCE(?, rank),
		    encrypted_password = CASE WHEN ? THEN ? ELSE encrypted_password END,
		    updated_at = datetime('now')
		WHERE id = ?`,
		upd.RiotID, upd.Tagline, upd.Username, upd.Rank,
		upd.Password != nil, encrypted, upd.ID)
	if err != nil {
		return Account{}, fmt.Errorf("update account %d: %w", upd.ID, err)
	}
	return s.Account(upd.ID)
}

// AccountFolder returns the stored folder name for an account, satisfying
// the switch engine's resolver interface.
func (s *Store) AccountFolder(accountID int64) (string, error) {
	account, err := s.Account(accountID)
	if err != nil {
		return "", err
	}
	if account.DataFolder == "" {
		return "", fmt.Errorf("%w: account %d", ErrNoDataFolder, accountID)
	}
	return account.DataFolder, nil
}

// CurrentDataAvailable reports whether the machine's current (unselected)
// data can still be adopted by a new account. The sentinel folder exists
// exactly while that data is unclaimed: the first switch away from an
// account rescues the live directory into it, and adoption renames it away.
func (s *Store) CurrentDataAvailable() (bool, error) {
	active, err := s.ActivePaths()
	if err != nil {
		return false, err
	}
	ok, err := afero.DirExists(s.fs, layout.SentinelPath(active.AccountDataRoot))
	if err != nil {
		return false, fmt.Errorf("check current data: %w", err)
	}
	return ok, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (Account, error) {
	var (
		account        Account
		username, rank sql.NullString
		folder         sql.NullString
	)
	err := row.Scan(
		&account.ID, &account.RiotID, &account.Tagline, &username,
		&account.EncryptedPassword, &rank, &folder,
		&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return Account{}, err
	}
	account.Username = username.String
	account.Rank = rank.String
	account.DataFolder = folder.String
	account.HasPassword = len(account.EncryptedPassword) > 0
	return account, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
