package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bot-ofertas/internal/bot"
	"bot-ofertas/internal/database"
	"bot-ofertas/internal/ledger"
	"bot-ofertas/internal/logger"
	"bot-ofertas/internal/matcher"
	"bot-ofertas/internal/metrics"
	"bot-ofertas/internal/models"
	"bot-ofertas/internal/scraper"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrPersistence indica falha de leitura ou escrita no histórico de alertas
var ErrPersistence = errors.New("erro de persistência no histórico de alertas")

// Outcome é o estado final de um ciclo
type Outcome string

const (
	// OutcomeCompleted: ciclo chegou ao fim, com ou sem falhas de envio
	OutcomeCompleted Outcome = "completed"
	// OutcomeSkip: nenhuma regra ativa e nenhum filtro de marca
	OutcomeSkip Outcome = "skip"
	// OutcomeError: falha ao buscar ofertas ou ler regras/configurações
	OutcomeError Outcome = "error"
	// OutcomeNothingNew: nenhum produto novo depois da deduplicação
	OutcomeNothingNew Outcome = "nothing-new"
	// OutcomeNotConfigured: Telegram sem token ou chat; produtos gravados mesmo assim
	OutcomeNotConfigured Outcome = "not-configured"
	// OutcomePersistenceError: falha ao ler ou gravar o histórico de alertas
	OutcomePersistenceError Outcome = "persistence-error"
	// OutcomeBusy: outro ciclo já estava em andamento, disparo ignorado
	OutcomeBusy Outcome = "busy"
)

const (
	// DefaultFetchTimeout limita a busca na fonte de ofertas
	DefaultFetchTimeout = 60 * time.Second
	// DefaultSendTimeout limita cada envio ao Telegram
	DefaultSendTimeout = 15 * time.Second
)

// RuleSource é o acesso somente leitura às regras e configurações
type RuleSource interface {
	ActiveRules(ctx context.Context) ([]models.WatchRule, error)
	GetSetting(ctx context.Context, key, def string) (string, error)
}

// Fetcher busca os candidatos na fonte de ofertas
type Fetcher interface {
	FetchCandidates(ctx context.Context, sourceURL string) ([]models.Candidate, error)
}

// Notifier entrega uma mensagem já formatada
type Notifier interface {
	Send(ctx context.Context, token, chatID, text string) error
}

// Options são os valores usados quando a configuração não existe no banco
type Options struct {
	SourceURL    string
	Token        string
	ChatID       string
	Legacy       *matcher.LegacyBrandFilter
	FetchTimeout time.Duration
	SendTimeout  time.Duration
}

// Result resume um ciclo
type Result struct {
	ScanID       string
	Outcome      Outcome
	Candidates   int
	Matched      int
	New          int
	Suppressed   int
	MessagesSent int
	SendErrors   int
	Recorded     int
	Purged       int64
	Duration     time.Duration
	Err          error
}

// Monitor executa o ciclo de verificação de ofertas
type Monitor struct {
	rules    RuleSource
	fetcher  Fetcher
	notifier Notifier
	ledger   *ledger.Ledger
	opts     Options
}

// New cria uma nova instância do monitor
func New(rules RuleSource, fetcher Fetcher, notifier Notifier, ldg *ledger.Ledger, opts Options) *Monitor {
	if opts.SourceURL == "" {
		opts.SourceURL = scraper.ToppreiseURL
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = DefaultSendTimeout
	}
	return &Monitor{rules: rules, fetcher: fetcher, notifier: notifier, ledger: ldg, opts: opts}
}

// RunCycle executa um ciclo completo. Nenhum erro escapa: o resultado traz o estado final.
func (m *Monitor) RunCycle(ctx context.Context) (res Result) {
	start := time.Now()
	res.ScanID = uuid.NewString()
	log := logger.Log.WithField("scan", res.ScanID[:8])

	defer func() {
		res.Duration = time.Since(start)
		metrics.RecordCycle(string(res.Outcome), res.Duration)
		log.WithField("outcome", res.Outcome).Infof("Ciclo finalizado em %v", res.Duration.Round(time.Millisecond))
	}()

	mode, err := m.resolveMode(ctx)
	if err != nil {
		log.Errorf("Erro ao carregar regras: %v", err)
		return res.fail(OutcomeError, err)
	}
	if mode == nil {
		log.Info("Nenhuma regra ativa, pulando verificação")
		res.Outcome = OutcomeSkip
		return res
	}

	sourceURL, token, chatID, err := m.settings(ctx)
	if err != nil {
		log.Errorf("Erro ao carregar configurações: %v", err)
		return res.fail(OutcomeError, err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, m.opts.FetchTimeout)
	candidates, err := m.fetcher.FetchCandidates(fetchCtx, sourceURL)
	cancel()
	if err != nil {
		log.Errorf("Erro ao buscar ofertas em %s: %v", sourceURL, err)
		return res.fail(OutcomeError, err)
	}
	res.Candidates = len(candidates)

	matched := ledger.Dedup(evaluateAll(log, candidates, mode))
	res.Matched = len(matched)

	fresh, suppressed, err := m.ledger.FilterNew(ctx, matched)
	if err != nil {
		log.Errorf("Erro ao consultar histórico de alertas: %v", err)
		return res.fail(OutcomePersistenceError, fmt.Errorf("%w: %v", ErrPersistence, err))
	}
	res.New, res.Suppressed = len(fresh), len(suppressed)
	log.Infof("%d candidatos, %d encontrados, %d novos", res.Candidates, res.Matched, res.New)

	if len(fresh) == 0 {
		res.Outcome = OutcomeNothingNew
		return res
	}

	res.Outcome = OutcomeCompleted
	if token == "" || chatID == "" {
		log.Warn("Telegram não configurado, alertas não enviados")
		res.Outcome = OutcomeNotConfigured
	} else {
		m.notify(ctx, log, token, chatID, fresh, &res)
	}

	// produtos são gravados mesmo se o envio falhar
	recorded, err := m.ledger.Record(ctx, fresh)
	res.Recorded = recorded
	metrics.RecordProducts(recorded)
	if err != nil {
		log.Errorf("Erro ao gravar histórico de alertas: %v", err)
		return res.fail(OutcomePersistenceError, fmt.Errorf("%w: %v", ErrPersistence, err))
	}

	purged, err := m.ledger.Cleanup(ctx)
	if err != nil {
		log.Errorf("Erro ao limpar histórico antigo: %v", err)
	} else if purged > 0 {
		log.Debugf("%d registros antigos removidos", purged)
	}
	res.Purged = purged
	return res
}

func (r Result) fail(outcome Outcome, err error) Result {
	r.Outcome = outcome
	r.Err = err
	return r
}

// resolveMode escolhe o modo do ciclo; nil significa que não há o que verificar
func (m *Monitor) resolveMode(ctx context.Context) (matcher.Mode, error) {
	rules, err := m.rules.ActiveRules(ctx)
	if err != nil {
		return nil, err
	}
	if len(rules) > 0 {
		return matcher.RuleSet{Rules: rules}, nil
	}
	if m.opts.Legacy != nil {
		return *m.opts.Legacy, nil
	}
	return nil, nil
}

func (m *Monitor) settings(ctx context.Context) (sourceURL, token, chatID string, err error) {
	if sourceURL, err = m.rules.GetSetting(ctx, database.SettingMonitoringURL, m.opts.SourceURL); err != nil {
		return
	}
	if token, err = m.rules.GetSetting(ctx, database.SettingTelegramToken, m.opts.Token); err != nil {
		return
	}
	chatID, err = m.rules.GetSetting(ctx, database.SettingTelegramChatID, m.opts.ChatID)
	return
}

func evaluateAll(log *logrus.Entry, candidates []models.Candidate, mode matcher.Mode) []models.MatchedProduct {
	var products []models.MatchedProduct
	for _, c := range candidates {
		matched, err := matcher.Evaluate(c, mode)
		if err != nil {
			log.Debugf("Candidato descartado: %v", err)
			continue
		}
		products = append(products, matched...)
	}
	return products
}

// notify envia as mensagens em ordem, uma de cada vez
func (m *Monitor) notify(ctx context.Context, log *logrus.Entry, token, chatID string, products []models.MatchedProduct, res *Result) {
	for i, text := range bot.BuildMessages(products) {
		sendCtx, cancel := context.WithTimeout(ctx, m.opts.SendTimeout)
		err := m.notifier.Send(sendCtx, token, chatID, text)
		cancel()
		metrics.RecordSend(err)
		if err != nil {
			res.SendErrors++
			log.Errorf("Erro ao enviar mensagem %d: %v", i+1, err)
			continue
		}
		res.MessagesSent++
	}
}
