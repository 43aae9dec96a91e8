package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"bot-ofertas/internal/logger"
	"bot-ofertas/internal/models"

	"gopkg.in/yaml.v3"
)

// Seed é o conteúdo do config.yaml usado para popular um banco vazio
type Seed struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Monitoring struct {
		URL                string   `yaml:"url"`
		IntervalMinutes    int      `yaml:"interval_minutes"`
		BrandFilter        string   `yaml:"brand_filter"`
		MinDiscountPercent *float64 `yaml:"min_discount_percent"`
	} `yaml:"monitoring"`
	Rules []SeedRule `yaml:"rules"`
}

// SeedRule é uma regra declarada no config.yaml
type SeedRule struct {
	Type               string  `yaml:"type"`
	Value              string  `yaml:"value"`
	MinDiscountPercent float64 `yaml:"min_discount_percent"`
}

// LoadSeed lê o arquivo YAML; arquivo inexistente não é erro e retorna nil
func LoadSeed(path string) (*Seed, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	seed := &Seed{}
	if err := yaml.NewDecoder(file).Decode(seed); err != nil {
		return nil, fmt.Errorf("ler %s: %w", path, err)
	}
	return seed, nil
}

// ApplySeed popula configurações e regras, apenas se ainda não houver regras.
// Valores em overrides (vindos do ambiente) têm prioridade sobre o arquivo.
func (db *DB) ApplySeed(ctx context.Context, seed *Seed, overrides map[string]string) error {
	rules, err := db.ListRules(ctx)
	if err != nil {
		return err
	}
	if len(rules) > 0 {
		return nil
	}
	if seed == nil {
		seed = &Seed{}
	}

	settings := map[string]string{
		SettingTelegramToken:  seed.Telegram.BotToken,
		SettingTelegramChatID: seed.Telegram.ChatID,
		SettingMonitoringURL:  seed.Monitoring.URL,
	}
	if seed.Monitoring.IntervalMinutes > 0 {
		settings[SettingMonitoringInterval] = strconv.Itoa(seed.Monitoring.IntervalMinutes)
	}
	for key, value := range overrides {
		if value != "" {
			settings[key] = value
		}
	}
	for key, value := range settings {
		if value == "" {
			continue
		}
		if err := db.SetSetting(ctx, key, value); err != nil {
			return fmt.Errorf("gravar %s: %w", key, err)
		}
	}

	if brand := seed.Monitoring.BrandFilter; brand != "" {
		discount := 20.0
		if seed.Monitoring.MinDiscountPercent != nil {
			discount = *seed.Monitoring.MinDiscountPercent
		}
		if _, err := db.AddRule(ctx, models.RuleBrand, brand, discount); err != nil {
			return err
		}
		logger.Log.Infof("Regra de marca importada: %s (>=%.0f%%)", brand, discount)
	}
	for _, r := range seed.Rules {
		kind, err := models.ParseRuleKind(r.Type)
		if err != nil {
			return err
		}
		if _, err := db.AddRule(ctx, kind, r.Value, r.MinDiscountPercent); err != nil {
			return err
		}
	}

	logger.Log.Info("Importação do config.yaml concluída")
	return nil
}
