package database

import (
	"context"
	"database/sql"
	"time"

	"bot-ofertas/internal/logger"
	"bot-ofertas/internal/models"
)

// IsAlerted verifica se o par (url, preço) já foi alertado
func (db *DB) IsAlerted(ctx context.Context, key models.ProductKey) (bool, error) {
	var one int
	err := db.conn.QueryRowContext(ctx,
		"SELECT 1 FROM alert_history WHERE product_url = ? AND price = ? LIMIT 1",
		key.Ref, key.Price,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RecordAlert grava um alerta no histórico. Não há restrição de unicidade:
// a verificação acontece em IsAlerted.
func (db *DB) RecordAlert(ctx context.Context, rec models.AlertRecord) error {
	alertedAt := rec.AlertedAt
	if alertedAt.IsZero() {
		alertedAt = db.now()
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO alert_history (product_url, price, product_name, discount, rule_id, alerted_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Key.Ref, rec.Key.Price, rec.ProductName, rec.Discount, nullInt64(rec.RuleID),
		alertedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return err
	}
	logger.Log.Debugf("Alerta registrado: %s", rec.Key)
	return nil
}

// PurgeOlderThan apaga alertas com alerted_at anterior a agora - age
func (db *DB) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := db.now().Add(-age).UTC().Format(timeLayout)
	result, err := db.conn.ExecContext(ctx, "DELETE FROM alert_history WHERE alerted_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		logger.Log.Infof("%d alerta(s) antigo(s) removido(s) do histórico", deleted)
	}
	return deleted, nil
}

// AlertHistory retorna os alertas mais recentes primeiro
func (db *DB) AlertHistory(ctx context.Context, limit int) ([]models.AlertRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, product_url, price, product_name, discount, rule_id, alerted_at
		 FROM alert_history
		 ORDER BY alerted_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.AlertRecord
	for rows.Next() {
		var (
			r         models.AlertRecord
			name      sql.NullString
			discount  sql.NullString
			ruleID    sql.NullInt64
			alertedAt string
		)
		if err := rows.Scan(&r.ID, &r.Key.Ref, &r.Key.Price, &name, &discount, &ruleID, &alertedAt); err != nil {
			return nil, err
		}
		r.ProductName = name.String
		r.Discount = discount.String
		if ruleID.Valid {
			id := ruleID.Int64
			r.RuleID = &id
		}
		r.AlertedAt = parseTime(alertedAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// parseTime aceita tanto o formato gravado por nós quanto o RFC3339 que o driver
// devolve para colunas TIMESTAMP
func parseTime(s string) time.Time {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
