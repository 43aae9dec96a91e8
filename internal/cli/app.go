package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"bot-ofertas/config"
	"bot-ofertas/internal/bot"
	"bot-ofertas/internal/database"
	"bot-ofertas/internal/ledger"
	"bot-ofertas/internal/logger"
	"bot-ofertas/internal/matcher"
	"bot-ofertas/internal/monitor"
	"bot-ofertas/internal/scraper"
)

// openDB abre o banco e importa o config.yaml quando ainda não há regras
func openDB(ctx context.Context) (*database.DB, error) {
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("erro ao inicializar banco de dados: %w", err)
	}

	seed, err := database.LoadSeed(cfg.SeedFile)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := db.ApplySeed(ctx, seed, cfg.SettingOverrides()); err != nil {
		db.Close()
		return nil, fmt.Errorf("erro ao importar %s: %w", cfg.SeedFile, err)
	}
	return db, nil
}

// newScheduler monta o pipeline completo sobre o banco
func newScheduler(ctx context.Context, db *database.DB) (*monitor.Scheduler, error) {
	opts := monitor.Options{
		SourceURL:    cfg.MonitoringURL,
		Token:        cfg.TelegramBotToken,
		ChatID:       cfg.TelegramChatID,
		FetchTimeout: cfg.FetchTimeout,
		SendTimeout:  cfg.SendTimeout,
	}
	if cfg.BrandFilter != "" {
		opts.Legacy = &matcher.LegacyBrandFilter{Brand: cfg.BrandFilter, MinDiscount: cfg.MinDiscountPercent}
	}

	mon := monitor.New(
		db,
		scraper.NewRegistry(cfg.FetchTimeout),
		bot.NewSender(cfg.SendTimeout),
		ledger.New(db, cfg.Retention),
		opts,
	)

	lock, err := database.NewLock(db.Path())
	if err != nil {
		return nil, err
	}
	return monitor.NewScheduler(mon, currentInterval(ctx, db), lock), nil
}

// currentInterval lê o intervalo salvo; valores inválidos caem no da configuração
func currentInterval(ctx context.Context, db *database.DB) time.Duration {
	raw, err := db.GetSetting(ctx, database.SettingMonitoringInterval, strconv.Itoa(cfg.CheckIntervalMinutes))
	if err != nil {
		logger.Log.Warnf("Erro ao ler intervalo salvo: %v", err)
		return cfg.CheckInterval
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		logger.Log.Warnf("Intervalo salvo inválido %q, usando %v", raw, cfg.CheckInterval)
		return cfg.CheckInterval
	}
	return time.Duration(minutes) * time.Minute
}

// authorizedChatID lê o chat autorizado como o token: banco primeiro, depois a configuração
func authorizedChatID(ctx context.Context, db *database.DB) int64 {
	chatID, err := db.GetSetting(ctx, database.SettingTelegramChatID, cfg.TelegramChatID)
	if err != nil {
		logger.Log.Warnf("Erro ao ler chat ID do Telegram: %v", err)
		chatID = cfg.TelegramChatID
	}
	id := config.ParseChatID(chatID)
	if id == 0 {
		logger.Log.Warn("Nenhum chat ID numérico configurado, comandos liberados para qualquer chat")
	}
	return id
}

// followIntervalSetting aplica, ao fim de cada ciclo, o intervalo salvo no banco
// (ex: alterado por "bot settings set" com o serve rodando)
func followIntervalSetting(db *database.DB, scheduler *monitor.Scheduler) {
	scheduler.OnResult = func(monitor.Result) {
		if d := currentInterval(context.Background(), db); d != scheduler.Interval() {
			scheduler.SetInterval(d)
		}
	}
}
