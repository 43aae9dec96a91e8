package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bot-ofertas/internal/models"
)

const ruleColumns = "id, rule_type, value, min_discount_percent, enabled, created_at"

// ErrRuleNotFound indica que o id não existe na tabela de regras
var ErrRuleNotFound = errors.New("regra não encontrada")

// ActiveRules retorna as regras habilitadas, em ordem de id
func (db *DB) ActiveRules(ctx context.Context) ([]models.WatchRule, error) {
	return db.queryRules(ctx, "SELECT "+ruleColumns+" FROM watch_rules WHERE enabled = 1 ORDER BY id")
}

// ListRules retorna todas as regras, as mais novas primeiro
func (db *DB) ListRules(ctx context.Context) ([]models.WatchRule, error) {
	return db.queryRules(ctx, "SELECT "+ruleColumns+" FROM watch_rules ORDER BY created_at DESC, id DESC")
}

// GetRule retorna uma regra pelo ID
func (db *DB) GetRule(ctx context.Context, id int64) (*models.WatchRule, error) {
	rules, err := db.queryRules(ctx, "SELECT "+ruleColumns+" FROM watch_rules WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, ErrRuleNotFound
	}
	return &rules[0], nil
}

// AddRule adiciona uma nova regra habilitada e retorna seu ID
func (db *DB) AddRule(ctx context.Context, kind models.RuleKind, value string, minDiscount float64) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("valor da regra vazio")
	}
	if minDiscount < 0 {
		return 0, fmt.Errorf("desconto mínimo negativo: %.1f", minDiscount)
	}
	result, err := db.conn.ExecContext(ctx,
		"INSERT INTO watch_rules (rule_type, value, min_discount_percent, created_at) VALUES (?, ?, ?, ?)",
		string(kind), value, minDiscount, db.now().UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// DeleteRule remove uma regra
func (db *DB) DeleteRule(ctx context.Context, id int64) error {
	return db.execRule(ctx, "DELETE FROM watch_rules WHERE id = ?", id)
}

// ToggleRule inverte o estado habilitado de uma regra
func (db *DB) ToggleRule(ctx context.Context, id int64) error {
	return db.execRule(ctx, "UPDATE watch_rules SET enabled = 1 - enabled WHERE id = ?", id)
}

// UpdateRule altera valor e/ou desconto mínimo; nil mantém o valor atual
func (db *DB) UpdateRule(ctx context.Context, id int64, value *string, minDiscount *float64) error {
	var (
		updates []string
		args    []interface{}
	)
	if value != nil {
		updates = append(updates, "value = ?")
		args = append(args, strings.TrimSpace(*value))
	}
	if minDiscount != nil {
		updates = append(updates, "min_discount_percent = ?")
		args = append(args, *minDiscount)
	}
	if len(updates) == 0 {
		return nil
	}
	args = append(args, id)
	return db.execRule(ctx, "UPDATE watch_rules SET "+strings.Join(updates, ", ")+" WHERE id = ?", args...)
}

func (db *DB) execRule(ctx context.Context, query string, args ...interface{}) error {
	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (db *DB) queryRules(ctx context.Context, query string, args ...interface{}) ([]models.WatchRule, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.WatchRule
	for rows.Next() {
		var (
			r         models.WatchRule
			kind      string
			createdAt sql.NullString
		)
		if err := rows.Scan(&r.ID, &kind, &r.Value, &r.MinDiscountPercent, &r.Enabled, &createdAt); err != nil {
			return nil, err
		}
		r.Kind = models.RuleKind(kind)
		r.CreatedAt = parseTime(createdAt.String)
		rules = append(rules, r)
	}
	return rules, rows.Err()
}
