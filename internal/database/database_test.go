package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bot-ofertas/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAlertHistory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	key := models.ProductKey{Ref: "https://www.toppreise.ch/p/1", Price: "CHF 199.00"}

	alerted, err := db.IsAlerted(ctx, key)
	require.NoError(t, err)
	assert.False(t, alerted)

	rule := int64(3)
	require.NoError(t, db.RecordAlert(ctx, models.AlertRecord{Key: key, ProductName: "Apple AirPods", Discount: "-25%", RuleID: &rule}))

	alerted, err = db.IsAlerted(ctx, key)
	require.NoError(t, err)
	assert.True(t, alerted)

	// mesmo produto com outro preço é um alerta novo
	alerted, err = db.IsAlerted(ctx, models.ProductKey{Ref: key.Ref, Price: "CHF 189.00"})
	require.NoError(t, err)
	assert.False(t, alerted)

	history, err := db.AlertHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, key, history[0].Key)
	assert.Equal(t, "Apple AirPods", history[0].ProductName)
	assert.Equal(t, "-25%", history[0].Discount)
	require.NotNil(t, history[0].RuleID)
	assert.Equal(t, rule, *history[0].RuleID)
	assert.False(t, history[0].AlertedAt.IsZero())
}

func TestPurgeOlderThan_FixedReferenceTime(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	ref := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return ref }

	old := models.ProductKey{Ref: "old", Price: "CHF 1.00"}
	edge := models.ProductKey{Ref: "edge", Price: "CHF 1.00"}
	recent := models.ProductKey{Ref: "recent", Price: "CHF 1.00"}
	require.NoError(t, db.RecordAlert(ctx, models.AlertRecord{Key: old, AlertedAt: ref.Add(-25 * time.Hour)}))
	require.NoError(t, db.RecordAlert(ctx, models.AlertRecord{Key: edge, AlertedAt: ref.Add(-24*time.Hour - time.Second)}))
	require.NoError(t, db.RecordAlert(ctx, models.AlertRecord{Key: recent, AlertedAt: ref.Add(-23 * time.Hour)}))

	deleted, err := db.PurgeOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	for key, want := range map[models.ProductKey]bool{old: false, edge: false, recent: true} {
		got, err := db.IsAlerted(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, want, got, key.Ref)
	}
}

func TestRules_CRUD(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	apple, err := db.AddRule(ctx, models.RuleBrand, " Apple ", 20)
	require.NoError(t, err)
	ipad, err := db.AddRule(ctx, models.RuleKeyword, "iPad", 15)
	require.NoError(t, err)

	_, err = db.AddRule(ctx, models.RuleKeyword, "  ", 15)
	assert.Error(t, err)

	active, err := db.ActiveRules(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Apple", active[0].Value)
	assert.Equal(t, models.RuleBrand, active[0].Kind)
	assert.True(t, active[0].Enabled)

	require.NoError(t, db.ToggleRule(ctx, apple))
	active, err = db.ActiveRules(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, ipad, active[0].ID)

	newMin := 30.0
	require.NoError(t, db.UpdateRule(ctx, ipad, nil, &newMin))
	rule, err := db.GetRule(ctx, ipad)
	require.NoError(t, err)
	assert.Equal(t, 30.0, rule.MinDiscountPercent)
	assert.Equal(t, "iPad", rule.Value)

	require.NoError(t, db.DeleteRule(ctx, ipad))
	assert.ErrorIs(t, db.DeleteRule(ctx, ipad), ErrRuleNotFound)
	_, err = db.GetRule(ctx, ipad)
	assert.ErrorIs(t, err, ErrRuleNotFound)

	all, err := db.ListRules(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	v, err := db.GetSetting(ctx, SettingMonitoringInterval, "30")
	require.NoError(t, err)
	assert.Equal(t, "30", v)

	require.NoError(t, db.SetSetting(ctx, SettingMonitoringInterval, "10"))
	require.NoError(t, db.SetSetting(ctx, SettingMonitoringInterval, "15"))
	v, err = db.GetSetting(ctx, SettingMonitoringInterval, "30")
	require.NoError(t, err)
	assert.Equal(t, "15", v)

	all, err := db.AllSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{SettingMonitoringInterval: "15"}, all)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
telegram:
  bot_token: "from-file"
  chat_id: "12345"
monitoring:
  url: "https://www.toppreise.ch/new-best-prices"
  interval_minutes: 10
  brand_filter: "Apple"
  min_discount_percent: 25
rules:
  - type: keyword
    value: "MacBook"
    min_discount_percent: 15
`), 0o644))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	require.NotNil(t, seed)

	require.NoError(t, db.ApplySeed(ctx, seed, map[string]string{SettingTelegramToken: "from-env"}))

	token, err := db.GetSetting(ctx, SettingTelegramToken, "")
	require.NoError(t, err)
	assert.Equal(t, "from-env", token)
	interval, err := db.GetSetting(ctx, SettingMonitoringInterval, "")
	require.NoError(t, err)
	assert.Equal(t, "10", interval)

	rules, err := db.ActiveRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, models.RuleBrand, rules[0].Kind)
	assert.Equal(t, 25.0, rules[0].MinDiscountPercent)
	assert.Equal(t, "MacBook", rules[1].Value)

	// com regras já cadastradas a importação não acontece de novo
	require.NoError(t, db.ApplySeed(ctx, seed, nil))
	rules, err = db.ActiveRules(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, 2)

	missing, err := LoadSeed(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMigratesLegacyAlertHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")
	conn, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = conn.Exec(`CREATE TABLE alert_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_url TEXT NOT NULL,
		price TEXT NOT NULL,
		alerted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	db, err := New(path)
	require.NoError(t, err)
	defer db.Close()

	rule := int64(1)
	require.NoError(t, db.RecordAlert(context.Background(), models.AlertRecord{
		Key: models.ProductKey{Ref: "u", Price: "p"}, ProductName: "n", RuleID: &rule,
	}))
}

func TestLock(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "lock.db")
	first, err := NewLock(dbPath)
	require.NoError(t, err)
	second, err := NewLock(dbPath)
	require.NoError(t, err)

	ok, err := first.TryLock()
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = second.TryLock()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, first.Unlock())
	ok, err = second.TryLock()
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, second.Unlock())
}
