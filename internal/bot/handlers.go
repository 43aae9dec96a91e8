package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bot-ofertas/internal/logger"
	"bot-ofertas/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const defaultMinDiscount = 20.0

// Store é o que os comandos precisam do banco de dados
type Store interface {
	ListRules(ctx context.Context) ([]models.WatchRule, error)
	AddRule(ctx context.Context, kind models.RuleKind, value string, minDiscount float64) (int64, error)
	DeleteRule(ctx context.Context, id int64) error
	ToggleRule(ctx context.Context, id int64) error
	AlertHistory(ctx context.Context, limit int) ([]models.AlertRecord, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Scanner é o agendador visto pelos comandos
type Scanner interface {
	RunNow() bool
	SetInterval(d time.Duration)
	Interval() time.Duration
	Busy() bool
}

// Handler processa os comandos de gerenciamento recebidos pelo Telegram
type Handler struct {
	bot          *tgbotapi.BotAPI
	store        Store
	scanner      Scanner
	authorizedID int64
	intervalKey  string
}

// NewHandler cria o handler. authorizedChatID == 0 desativa a restrição de chat.
func NewHandler(bot *tgbotapi.BotAPI, store Store, scanner Scanner, authorizedChatID int64, intervalKey string) *Handler {
	return &Handler{bot: bot, store: store, scanner: scanner, authorizedID: authorizedChatID, intervalKey: intervalKey}
}

// Listen lê atualizações do Telegram até ctx ser cancelado
func (h *Handler) Listen(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := h.bot.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		h.bot.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil || update.Message.Text == "" {
			continue
		}
		command, args := parseCommand(update.Message.Text)
		if command == "" {
			continue
		}
		chatID := update.Message.Chat.ID

		if !h.Authorized(command, chatID) {
			h.reply(chatID, "Você não está autorizado a usar este bot.", false)
			continue
		}

		h.reply(chatID, h.Handle(ctx, command, args), true)
	}
}

// Authorized diz se o chat pode executar o comando.
// /start e /help são públicos; sem chat autorizado configurado, tudo é liberado.
func (h *Handler) Authorized(command string, chatID int64) bool {
	if command == "/start" || command == "/help" {
		return true
	}
	return h.authorizedID == 0 || chatID == h.authorizedID
}

// Handle executa um comando e retorna o texto da resposta (HTML)
func (h *Handler) Handle(ctx context.Context, command string, args []string) string {
	switch command {
	case "/start", "/help":
		return helpText
	case "/regras":
		return h.handleListRules(ctx)
	case "/add":
		return h.handleAddRule(ctx, args)
	case "/remove":
		return h.handleRuleByID(ctx, args, "/remove", h.store.DeleteRule, "🗑 Regra %d removida.")
	case "/toggle":
		return h.handleRuleByID(ctx, args, "/toggle", h.store.ToggleRule, "🔁 Regra %d ativada/desativada.")
	case "/scan":
		if h.scanner.RunNow() {
			return "⏳ Verificação iniciada."
		}
		return "⚠️ Já existe uma verificação em andamento."
	case "/historico":
		return h.handleHistory(ctx, args)
	case "/intervalo":
		return h.handleInterval(ctx, args)
	case "/status":
		status := "aguardando próximo ciclo"
		if h.scanner.Busy() {
			status = "verificando agora"
		}
		return fmt.Sprintf("📊 Intervalo: %v\nEstado: %s", h.scanner.Interval(), status)
	}
	return "Comando não reconhecido. Use /help para ver os comandos disponíveis."
}

const helpText = `🤖 <b>Bot de Alertas de Preço</b>

<b>Comandos disponíveis:</b>

<b>/regras</b> - Listar regras de monitoramento

<b>/add</b> &lt;brand|keyword&gt; &lt;valor&gt; [desconto%]
Exemplo: /add brand Apple 20%
Exemplo: /add keyword iPad Pro 15

<b>/remove &lt;id&gt;</b> - Remover regra
<b>/toggle &lt;id&gt;</b> - Ativar/desativar regra
<b>/scan</b> - Verificar ofertas agora
<b>/historico [n]</b> - Últimos alertas enviados
<b>/intervalo &lt;minutos&gt;</b> - Alterar o intervalo de verificação
<b>/status</b> - Estado do monitoramento
<b>/help</b> - Mostrar esta mensagem de ajuda
`

// parseCommand separa o comando (sem @botname) dos argumentos
func parseCommand(text string) (string, []string) {
	parts := strings.Fields(text)
	if len(parts) == 0 || !strings.HasPrefix(parts[0], "/") {
		return "", nil
	}
	command := strings.ToLower(parts[0])
	if idx := strings.Index(command, "@"); idx > 0 {
		command = command[:idx]
	}
	return command, parts[1:]
}

// parseAddArgs lê "<tipo> <valor...> [desconto%]"
func parseAddArgs(args []string) (models.RuleKind, string, float64, error) {
	if len(args) < 2 {
		return "", "", 0, errors.New("formato incorreto")
	}
	kind, err := models.ParseRuleKind(args[0])
	if err != nil {
		return "", "", 0, err
	}

	valueParts := args[1:]
	minDiscount := defaultMinDiscount
	if len(valueParts) > 1 {
		last := strings.TrimSuffix(valueParts[len(valueParts)-1], "%")
		if d, err := strconv.ParseFloat(last, 64); err == nil {
			if d < 0 || d > 100 {
				return "", "", 0, errors.New("desconto inválido. Use um valor entre 0 e 100")
			}
			minDiscount = d
			valueParts = valueParts[:len(valueParts)-1]
		}
	}
	return kind, strings.Join(valueParts, " "), minDiscount, nil
}

func (h *Handler) handleListRules(ctx context.Context) string {
	rules, err := h.store.ListRules(ctx)
	if err != nil {
		return fmt.Sprintf("❌ Erro ao listar regras: %v", err)
	}
	if len(rules) == 0 {
		return "📋 Nenhuma regra cadastrada. Use /add para criar uma."
	}

	var response strings.Builder
	response.WriteString("📋 <b>Regras de monitoramento:</b>\n\n")
	for _, r := range rules {
		state := "✅"
		if !r.Enabled {
			state = "⏸"
		}
		fmt.Fprintf(&response, "%s <b>ID %d</b> %s: %s (≥ %.0f%%)\n", state, r.ID, r.Kind, escapeHTML(r.Value), r.MinDiscountPercent)
	}
	return response.String()
}

func (h *Handler) handleAddRule(ctx context.Context, args []string) string {
	kind, value, minDiscount, err := parseAddArgs(args)
	if err != nil {
		return fmt.Sprintf("❌ %v.\n\nUso: /add &lt;brand|keyword&gt; &lt;valor&gt; [desconto%%]", err)
	}
	id, err := h.store.AddRule(ctx, kind, value, minDiscount)
	if err != nil {
		return fmt.Sprintf("❌ Erro ao adicionar regra: %v", err)
	}
	return fmt.Sprintf("✅ Regra %d adicionada: %s %s (≥ %.0f%%)", id, kind, escapeHTML(value), minDiscount)
}

func (h *Handler) handleRuleByID(ctx context.Context, args []string, usage string, op func(context.Context, int64) error, okFormat string) string {
	if len(args) < 1 {
		return fmt.Sprintf("❌ Formato incorreto.\n\nUso: %s &lt;id&gt;", usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return "❌ ID inválido."
	}
	if err := op(ctx, id); err != nil {
		return fmt.Sprintf("❌ %v", err)
	}
	return fmt.Sprintf(okFormat, id)
}

func (h *Handler) handleHistory(ctx context.Context, args []string) string {
	limit := 10
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			limit = n
		}
	}
	records, err := h.store.AlertHistory(ctx, limit)
	if err != nil {
		return fmt.Sprintf("❌ Erro ao buscar histórico: %v", err)
	}
	if len(records) == 0 {
		return "📭 Nenhum alerta nas últimas horas."
	}

	var response strings.Builder
	response.WriteString("🕐 <b>Últimos alertas:</b>\n\n")
	for _, r := range records {
		name := r.ProductName
		if name == "" {
			name = r.Key.Ref
		}
		fmt.Fprintf(&response, "• %s %s %s (%s)\n", r.AlertedAt.Local().Format("02/01 15:04"), escapeHTML(name), r.Key.Price, r.Discount)
	}
	return response.String()
}

func (h *Handler) handleInterval(ctx context.Context, args []string) string {
	if len(args) < 1 {
		return fmt.Sprintf("⏱ Intervalo atual: %v\n\nUso: /intervalo &lt;minutos&gt;", h.scanner.Interval())
	}
	minutes, err := strconv.Atoi(args[0])
	if err != nil || minutes <= 0 {
		return "❌ Intervalo inválido. Use um número inteiro de minutos."
	}
	if err := h.store.SetSetting(ctx, h.intervalKey, strconv.Itoa(minutes)); err != nil {
		return fmt.Sprintf("❌ Erro ao salvar intervalo: %v", err)
	}
	h.scanner.SetInterval(time.Duration(minutes) * time.Minute)
	return fmt.Sprintf("✅ Verificando a cada %d minuto(s).", minutes)
}

// reply envia a resposta; se o HTML falhar, tenta sem formatação
func (h *Handler) reply(chatID int64, text string, html bool) {
	msg := tgbotapi.NewMessage(chatID, text)
	if html {
		msg.ParseMode = tgbotapi.ModeHTML
	}
	msg.DisableWebPagePreview = true
	if _, err := h.bot.Send(msg); err != nil {
		logger.Log.Warnf("Erro ao enviar resposta com HTML: %v", err)
		msg.ParseMode = ""
		if _, err2 := h.bot.Send(msg); err2 != nil {
			logger.Log.Errorf("Erro ao enviar resposta sem formatação: %v", err2)
		}
	}
}
