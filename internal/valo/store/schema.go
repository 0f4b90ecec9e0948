package store

// Schema is applied on every open; statements are idempotent. Column
// migrations for older databases live in migrate().
const schemaSQL = `
CREATE TABLE IF NOT EXISTS settings (
    id                  INTEGER PRIMARY KEY CHECK (id = 1),
    active_account_id   INTEGER,
    client_service_path TEXT,
    client_data_path    TEXT,
    account_data_path   TEXT,
    launched            INTEGER NOT NULL DEFAULT 0,
    created_at          TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at          TEXT NOT NULL DEFAULT (datetime('now'))
);

INSERT OR IGNORE INTO settings (id) VALUES (1);

CREATE TABLE IF NOT EXISTS accounts (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    riot_id            TEXT NOT NULL,
    tagline            TEXT NOT NULL,
    username           TEXT,
    encrypted_password BLOB NOT NULL DEFAULT x'',
    rank               TEXT,
    data_folder        TEXT,
    created_at         TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at         TEXT NOT NULL DEFAULT (datetime('now'))
);
`
