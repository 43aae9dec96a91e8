package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"bot-ofertas/internal/database"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config contém as configurações da aplicação
type Config struct {
	TelegramBotToken     string
	TelegramChatID       string
	MonitoringURL        string
	CheckIntervalMinutes int
	CheckInterval        time.Duration
	DatabasePath         string
	SeedFile             string
	LogLevel             string
	MetricsAddr          string
	FetchTimeout         time.Duration
	SendTimeout          time.Duration
	Retention            time.Duration
	BrandFilter          string
	MinDiscountPercent   float64
}

// variáveis de ambiente aceitas, por chave de configuração
var envBindings = map[string][]string{
	"telegram.bot_token":               {"TELEGRAM_BOT_TOKEN"},
	"telegram.chat_id":                 {"TELEGRAM_CHAT_ID"},
	"monitoring.url":                   {"MONITORING_URL"},
	"monitoring.interval_minutes":      {"MONITORING_INTERVAL", "CHECK_INTERVAL_MINUTES"},
	"monitoring.brand_filter":          {"BRAND_FILTER"},
	"monitoring.min_discount_percent":  {"MIN_DISCOUNT_PERCENT"},
	"monitoring.fetch_timeout_seconds": {"FETCH_TIMEOUT_SECONDS"},
	"monitoring.send_timeout_seconds":  {"SEND_TIMEOUT_SECONDS"},
	"monitoring.retention_hours":       {"RETENTION_HOURS"},
	"database.path":                    {"DB_PATH"},
	"database.seed_file":               {"SEED_FILE"},
	"log.level":                        {"LOG_LEVEL"},
	"metrics.addr":                     {"METRICS_ADDR"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("monitoring.interval_minutes", 30)
	v.SetDefault("monitoring.min_discount_percent", 20.0)
	v.SetDefault("monitoring.fetch_timeout_seconds", 60)
	v.SetDefault("monitoring.send_timeout_seconds", 15)
	v.SetDefault("monitoring.retention_hours", 24)
	v.SetDefault("database.path", "./ofertas.db")
	v.SetDefault("database.seed_file", "config.yaml")
	v.SetDefault("log.level", "info")
}

// Load carrega as configurações do arquivo (opcional) e das variáveis de ambiente.
// Sem cfgFile, procura $HOME/.bot-ofertas.yaml; arquivo ausente não é erro.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, err
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("diretório home: %w", err)
		}
		v.AddConfigPath(home)
		v.SetConfigName(".bot-ofertas")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("ler arquivo de configuração: %w", err)
		}
	}

	cfg := &Config{
		TelegramBotToken:     strings.TrimSpace(v.GetString("telegram.bot_token")),
		TelegramChatID:       strings.TrimSpace(v.GetString("telegram.chat_id")),
		MonitoringURL:        strings.TrimSpace(v.GetString("monitoring.url")),
		CheckIntervalMinutes: v.GetInt("monitoring.interval_minutes"),
		DatabasePath:         v.GetString("database.path"),
		SeedFile:             v.GetString("database.seed_file"),
		LogLevel:             v.GetString("log.level"),
		MetricsAddr:          v.GetString("metrics.addr"),
		FetchTimeout:         time.Duration(v.GetInt("monitoring.fetch_timeout_seconds")) * time.Second,
		SendTimeout:          time.Duration(v.GetInt("monitoring.send_timeout_seconds")) * time.Second,
		Retention:            time.Duration(v.GetInt("monitoring.retention_hours")) * time.Hour,
		BrandFilter:          strings.TrimSpace(v.GetString("monitoring.brand_filter")),
		MinDiscountPercent:   v.GetFloat64("monitoring.min_discount_percent"),
	}

	if cfg.CheckIntervalMinutes <= 0 {
		return nil, fmt.Errorf("intervalo de verificação inválido: %d", cfg.CheckIntervalMinutes)
	}
	if cfg.MinDiscountPercent < 0 || cfg.MinDiscountPercent > 100 {
		return nil, fmt.Errorf("desconto mínimo inválido: %v", cfg.MinDiscountPercent)
	}
	cfg.CheckInterval = time.Duration(cfg.CheckIntervalMinutes) * time.Minute

	dbPath, err := homedir.Expand(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	cfg.DatabasePath = filepath.Clean(dbPath)

	return cfg, nil
}

// AuthorizedChatID é o chat numérico que pode usar os comandos; 0 libera todos
func (c *Config) AuthorizedChatID() int64 {
	return ParseChatID(c.TelegramChatID)
}

// ParseChatID converte um chat ID numérico; @canal ou vazio retornam 0
func ParseChatID(chatID string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// SettingOverrides são os valores do ambiente que prevalecem sobre o config.yaml
func (c *Config) SettingOverrides() map[string]string {
	return map[string]string{
		database.SettingTelegramToken:  c.TelegramBotToken,
		database.SettingTelegramChatID: c.TelegramChatID,
		database.SettingMonitoringURL:  c.MonitoringURL,
	}
}
