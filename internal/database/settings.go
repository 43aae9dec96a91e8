package database

import (
	"context"
	"database/sql"
)

// Chaves de configuração guardadas na tabela settings
const (
	SettingMonitoringURL      = "monitoring_url"
	SettingMonitoringInterval = "monitoring_interval_minutes"
	SettingTelegramToken      = "telegram_bot_token"
	SettingTelegramChatID     = "telegram_chat_id"
)

// SettingKeys lista as chaves aceitas pelos comandos de configuração
var SettingKeys = []string{
	SettingTelegramToken,
	SettingTelegramChatID,
	SettingMonitoringInterval,
	SettingMonitoringURL,
}

// GetSetting retorna o valor da chave ou def quando ela não existe
func (db *DB) GetSetting(ctx context.Context, key, def string) (string, error) {
	var value string
	err := db.conn.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return def, nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting grava (ou substitui) uma chave
func (db *DB) SetSetting(ctx context.Context, key, value string) error {
	_, err := db.conn.ExecContext(ctx, "INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value)
	return err
}

// AllSettings retorna todas as chaves gravadas
func (db *DB) AllSettings(ctx context.Context) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, rows.Err()
}
