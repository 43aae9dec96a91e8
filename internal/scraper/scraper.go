package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bot-ofertas/internal/logger"
	"bot-ofertas/internal/models"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// ErrNoScraper indica que nenhuma fonte conhece a URL configurada
var ErrNoScraper = errors.New("nenhum scraper encontrado para a URL")

// Scraper define a interface para as fontes de ofertas
type Scraper interface {
	CanHandle(rawURL string) bool
	FetchCandidates(ctx context.Context, sourceURL string) ([]models.Candidate, error)
}

// Registry mantém um registro de todos os scrapers disponíveis
type Registry struct {
	scrapers []Scraper
}

// NewRegistry cria um novo registro de scrapers com um cliente HTTP compartilhado
func NewRegistry(timeout time.Duration) *Registry {
	client := newClient(timeout)
	return &Registry{
		scrapers: []Scraper{
			NewToppreiseScraper(client),
			NewPreispiratScraper(client),
		},
	}
}

// FindScraper encontra o scraper apropriado para uma URL
func (r *Registry) FindScraper(rawURL string) Scraper {
	for _, scraper := range r.scrapers {
		if scraper.CanHandle(rawURL) {
			return scraper
		}
	}
	return nil
}

// FetchCandidates busca os produtos da fonte configurada
func (r *Registry) FetchCandidates(ctx context.Context, sourceURL string) ([]models.Candidate, error) {
	scraper := r.FindScraper(sourceURL)
	if scraper == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoScraper, sourceURL)
	}
	return scraper.FetchCandidates(ctx, sourceURL)
}

// hostMatches compara o host da URL com um domínio (inclui subdomínios)
func hostMatches(rawURL, domain string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func newClient(timeout time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.Logger = retryLogger{}
	client.RetryMax = 3
	client.RetryWaitMin = time.Second
	client.RetryWaitMax = 5 * time.Second
	client.HTTPClient.Timeout = timeout
	return client
}

// get faz o GET com os cabeçalhos de navegador; o chamador fecha o corpo
func get(ctx context.Context, client *retryablehttp.Client, rawURL, accept string) (io.ReadCloser, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "de-CH,de;q=0.9,en;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("erro ao buscar %s: status code: %d", rawURL, resp.StatusCode)
	}
	return resp.Body, nil
}

// collapseSpaces junta o texto visível como o navegador mostraria
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// retryLogger encaminha os logs do retryablehttp para o logrus
type retryLogger struct{}

func (retryLogger) entry(keysAndValues []interface{}) *logrus.Entry {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return logger.Log.WithFields(fields)
}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Error(msg)
}

func (l retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Debug(msg)
}

func (l retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Debug(msg)
}

func (l retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Warn(msg)
}
