package bot

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"bot-ofertas/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// Init inicializa o bot do Telegram
func Init(token string, timeout time.Duration) (*tgbotapi.BotAPI, error) {
	return connect(token, tgbotapi.APIEndpoint, &http.Client{Timeout: timeout})
}

func connect(token, endpoint string, client *http.Client) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, fmt.Errorf("token do Telegram não configurado")
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		if err.Error() == "Unauthorized" {
			return nil, fmt.Errorf("token do Telegram inválido ou expirado. Para obter um token, fale com @BotFather no Telegram")
		}
		return nil, fmt.Errorf("erro ao conectar com Telegram: %w", err)
	}

	bot.Debug = false
	logger.Log.Infof("Bot autorizado como: %s", bot.Self.UserName)
	return bot, nil
}

// Sender entrega mensagens pelo Telegram, uma de cada vez e na ordem recebida
type Sender struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter

	mu   sync.Mutex
	bots map[string]*tgbotapi.BotAPI
}

// NewSender cria um Sender; cada requisição ao Telegram é limitada por timeout
func NewSender(timeout time.Duration) *Sender {
	return newSender(tgbotapi.APIEndpoint, timeout)
}

func newSender(endpoint string, timeout time.Duration) *Sender {
	return &Sender{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		// o Telegram recomenda no máximo uma mensagem por segundo no mesmo chat
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		bots:    make(map[string]*tgbotapi.BotAPI),
	}
}

// Send envia uma mensagem HTML para o chat
func (s *Sender) Send(ctx context.Context, token, chatID, text string) error {
	msg, err := newMessage(chatID, text)
	if err != nil {
		return err
	}
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("aguardando limite de envio: %w", err)
	}

	bot, err := s.botFor(token)
	if err != nil {
		return err
	}

	type result struct{ err error }
	done := make(chan result, 1)
	go func() {
		_, err := bot.Send(msg)
		done <- result{err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return fmt.Errorf("erro ao enviar mensagem: %w", r.err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("envio cancelado: %w", ctx.Err())
	}
}

func (s *Sender) botFor(token string) (*tgbotapi.BotAPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bot, ok := s.bots[token]; ok {
		return bot, nil
	}
	bot, err := connect(token, s.endpoint, s.client)
	if err != nil {
		return nil, err
	}
	s.bots[token] = bot
	return bot, nil
}

// newMessage aceita tanto um ID numérico quanto um @canal
func newMessage(chatID, text string) (tgbotapi.MessageConfig, error) {
	chatID = strings.TrimSpace(chatID)
	if strings.HasPrefix(chatID, "@") {
		return tgbotapi.NewMessageToChannel(chatID, text), nil
	}
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return tgbotapi.MessageConfig{}, fmt.Errorf("chat ID inválido %q: %w", chatID, err)
	}
	return tgbotapi.NewMessage(id, text), nil
}
