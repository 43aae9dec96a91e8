package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"bot-ofertas/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

// timeLayout é o mesmo formato de CURRENT_TIMESTAMP do SQLite, comparável como texto
const timeLayout = "2006-01-02 15:04:05"

// DB encapsula a conexão com o banco de dados
type DB struct {
	conn *sql.DB
	path string
	now  func() time.Time
}

// New cria uma nova instância do banco de dados
func New(dbPath string) (*DB, error) {
	dsn := "file:" + dbPath + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite aceita um único escritor; uma conexão evita "database is locked"
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, path: dbPath, now: time.Now}

	if err := db.init(); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Log.Infof("Banco de dados inicializado: %s", dbPath)
	return db, nil
}

// Path retorna o caminho do arquivo do banco
func (db *DB) Path() string {
	return db.path
}

// Close fecha a conexão com o banco de dados
func (db *DB) Close() error {
	if db == nil || db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Ping verifica se o banco responde
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// init cria as tabelas necessárias
func (db *DB) init() error {
	createTablesSQL := `
	CREATE TABLE IF NOT EXISTS alert_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_url TEXT NOT NULL,
		price TEXT NOT NULL,
		product_name TEXT DEFAULT '',
		discount TEXT DEFAULT '',
		rule_id INTEGER,
		alerted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_url_price ON alert_history (product_url, price);
	CREATE INDEX IF NOT EXISTS idx_alerted_at ON alert_history (alerted_at);

	CREATE TABLE IF NOT EXISTS watch_rules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		rule_type TEXT NOT NULL CHECK(rule_type IN ('brand', 'keyword')),
		value TEXT NOT NULL,
		min_discount_percent REAL NOT NULL DEFAULT 20,
		enabled INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	if _, err := db.conn.Exec(createTablesSQL); err != nil {
		return fmt.Errorf("criar tabelas: %w", err)
	}

	return db.migrateAlertHistory()
}

// migrateAlertHistory adiciona colunas que bancos antigos não têm
func (db *DB) migrateAlertHistory() error {
	rows, err := db.conn.Query("PRAGMA table_info(alert_history)")
	if err != nil {
		return err
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return err
		}
		columns[strings.ToLower(name)] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	migrations := []struct {
		column string
		stmt   string
	}{
		{"product_name", "ALTER TABLE alert_history ADD COLUMN product_name TEXT DEFAULT ''"},
		{"discount", "ALTER TABLE alert_history ADD COLUMN discount TEXT DEFAULT ''"},
		{"rule_id", "ALTER TABLE alert_history ADD COLUMN rule_id INTEGER"},
	}
	for _, m := range migrations {
		if columns[m.column] {
			continue
		}
		if _, err := db.conn.Exec(m.stmt); err != nil {
			return fmt.Errorf("migrar coluna %s: %w", m.column, err)
		}
	}
	return nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
