package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"bot-ofertas/internal/logger"
	"bot-ofertas/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
)

// ToppreiseURL é a página padrão de novos melhores preços
const ToppreiseURL = "https://www.toppreise.ch/new-best-prices"

// ToppreiseScraper lê os cartões de produto da página do toppreise.ch
type ToppreiseScraper struct {
	client *retryablehttp.Client
}

// NewToppreiseScraper cria uma nova instância do scraper do toppreise.ch
func NewToppreiseScraper(client *retryablehttp.Client) *ToppreiseScraper {
	return &ToppreiseScraper{client: client}
}

// CanHandle verifica se o scraper pode lidar com a URL fornecida
func (t *ToppreiseScraper) CanHandle(rawURL string) bool {
	return hostMatches(rawURL, "toppreise.ch")
}

// FetchCandidates baixa a página e extrai um candidato por cartão
func (t *ToppreiseScraper) FetchCandidates(ctx context.Context, sourceURL string) ([]models.Candidate, error) {
	body, err := get(ctx, t.client, sourceURL, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler HTML: %w", err)
	}

	base, err := url.Parse(sourceURL)
	if err != nil {
		return nil, err
	}

	cards := doc.Find("a.small-box2")
	logger.Log.Infof("Encontrados %d cartões de produto", cards.Length())

	candidates := make([]models.Candidate, 0, cards.Length())
	cards.Each(func(_ int, card *goquery.Selection) {
		candidates = append(candidates, models.Candidate{
			Manufacturer: collapseSpaces(card.Find(".product-manufacturer").First().Text()),
			Name:         collapseSpaces(card.Find(".product-name").First().Text()),
			OldPriceText: strings.TrimSpace(card.Find(".priceContainer.crossed .Plugin_Price").First().Text()),
			NewPriceText: strings.TrimSpace(card.Find(".priceContainer.productPrice .Plugin_Price").First().Text()),
			URL:          resolveHref(base, card.AttrOr("href", "")),
		})
	})
	return candidates, nil
}

// resolveHref torna links relativos absolutos a partir da página de origem
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
