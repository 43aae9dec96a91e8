package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"bot-ofertas/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	rules    []models.WatchRule
	settings map[string]string
	history  []models.AlertRecord
}

func (f *fakeStore) ListRules(context.Context) ([]models.WatchRule, error) { return f.rules, nil }

func (f *fakeStore) AddRule(_ context.Context, kind models.RuleKind, value string, min float64) (int64, error) {
	id := int64(len(f.rules) + 1)
	f.rules = append(f.rules, models.WatchRule{ID: id, Kind: kind, Value: value, MinDiscountPercent: min, Enabled: true})
	return id, nil
}

func (f *fakeStore) DeleteRule(_ context.Context, id int64) error {
	for i, r := range f.rules {
		if r.ID == id {
			f.rules = append(f.rules[:i], f.rules[i+1:]...)
			return nil
		}
	}
	return errors.New("regra não encontrada")
}

func (f *fakeStore) ToggleRule(_ context.Context, id int64) error {
	for i := range f.rules {
		if f.rules[i].ID == id {
			f.rules[i].Enabled = !f.rules[i].Enabled
			return nil
		}
	}
	return errors.New("regra não encontrada")
}

func (f *fakeStore) AlertHistory(context.Context, int) ([]models.AlertRecord, error) {
	return f.history, nil
}

func (f *fakeStore) SetSetting(_ context.Context, key, value string) error {
	f.settings[key] = value
	return nil
}

type fakeScanner struct {
	accept   bool
	interval time.Duration
}

func (f *fakeScanner) RunNow() bool                { return f.accept }
func (f *fakeScanner) SetInterval(d time.Duration) { f.interval = d }
func (f *fakeScanner) Interval() time.Duration     { return f.interval }
func (f *fakeScanner) Busy() bool                  { return false }

func TestParseCommand(t *testing.T) {
	cmd, args := parseCommand("/ADD@ofertas_bot keyword iPad Pro 15%")
	assert.Equal(t, "/add", cmd)
	assert.Equal(t, []string{"keyword", "iPad", "Pro", "15%"}, args)

	cmd, _ = parseCommand("olá")
	assert.Empty(t, cmd)
}

func TestParseAddArgs(t *testing.T) {
	kind, value, min, err := parseAddArgs([]string{"keyword", "iPad", "Pro", "15%"})
	require.NoError(t, err)
	assert.Equal(t, models.RuleKeyword, kind)
	assert.Equal(t, "iPad Pro", value)
	assert.Equal(t, 15.0, min)

	kind, value, min, err = parseAddArgs([]string{"brand", "Apple"})
	require.NoError(t, err)
	assert.Equal(t, models.RuleBrand, kind)
	assert.Equal(t, "Apple", value)
	assert.Equal(t, defaultMinDiscount, min)

	// um número sozinho é o valor, não o desconto
	_, value, _, err = parseAddArgs([]string{"keyword", "2024"})
	require.NoError(t, err)
	assert.Equal(t, "2024", value)

	_, _, _, err = parseAddArgs([]string{"brand", "Apple", "150%"})
	assert.Error(t, err)
	_, _, _, err = parseAddArgs([]string{"tipo", "Apple"})
	assert.Error(t, err)
	_, _, _, err = parseAddArgs([]string{"brand"})
	assert.Error(t, err)
}

func TestHandle(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{settings: map[string]string{}}
	scanner := &fakeScanner{accept: true, interval: 30 * time.Minute}
	h := NewHandler(nil, store, scanner, 0, "monitoring_interval_minutes")

	assert.Contains(t, h.Handle(ctx, "/regras", nil), "Nenhuma regra")
	assert.Contains(t, h.Handle(ctx, "/add", []string{"brand", "Apple", "25"}), "Regra 1 adicionada")
	assert.Contains(t, h.Handle(ctx, "/regras", nil), "Apple (≥ 25%)")

	assert.Contains(t, h.Handle(ctx, "/toggle", []string{"1"}), "Regra 1")
	assert.False(t, store.rules[0].Enabled)
	assert.Contains(t, h.Handle(ctx, "/toggle", []string{"x"}), "ID inválido")
	assert.Contains(t, h.Handle(ctx, "/remove", []string{"9"}), "não encontrada")
	assert.Contains(t, h.Handle(ctx, "/remove", []string{"1"}), "removida")

	assert.Contains(t, h.Handle(ctx, "/scan", nil), "iniciada")
	scanner.accept = false
	assert.Contains(t, h.Handle(ctx, "/scan", nil), "em andamento")

	assert.Contains(t, h.Handle(ctx, "/intervalo", []string{"10"}), "10 minuto")
	assert.Equal(t, 10*time.Minute, scanner.interval)
	assert.Equal(t, "10", store.settings["monitoring_interval_minutes"])
	assert.Contains(t, h.Handle(ctx, "/intervalo", []string{"-1"}), "inválido")

	assert.Contains(t, h.Handle(ctx, "/historico", nil), "Nenhum alerta")
	store.history = []models.AlertRecord{{
		Key:         models.ProductKey{Ref: "https://x", Price: "CHF 10.00"},
		ProductName: "Apple Pencil",
		Discount:    "-30%",
		AlertedAt:   time.Now(),
	}}
	assert.Contains(t, h.Handle(ctx, "/historico", []string{"5"}), "Apple Pencil CHF 10.00 (-30%)")

	assert.Contains(t, h.Handle(ctx, "/nada", nil), "não reconhecido")
}

func TestAuthorized(t *testing.T) {
	open := NewHandler(nil, nil, nil, 0, "monitoring_interval_minutes")
	assert.True(t, open.Authorized("/add", 999))

	restricted := NewHandler(nil, nil, nil, -100123, "monitoring_interval_minutes")
	assert.True(t, restricted.Authorized("/regras", -100123))
	assert.False(t, restricted.Authorized("/remove", 999))
	assert.False(t, restricted.Authorized("/intervalo", 999))
	assert.True(t, restricted.Authorized("/start", 999))
	assert.True(t, restricted.Authorized("/help", 999))
}
