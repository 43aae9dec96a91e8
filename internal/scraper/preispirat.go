package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"bot-ofertas/internal/logger"
	"bot-ofertas/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/mmcdole/gofeed"
)

// PreispiratURL é o feed RSS de ofertas do preispirat.ch
const PreispiratURL = "https://www.preispirat.ch/feed/"

var (
	// "Preis: CHF 189.-" é o preço atual, "Zweitbester Preis: CHF 229.-" serve de preço antigo
	pricePattern = regexp.MustCompile(`(Zweitbester\s+)?Preis:\s*CHF\s*([\d'.,]+-?)`)
	shopPattern  = regexp.MustCompile(`(?i)(?:Shop|Händler):\s*([^\n]+)`)
)

// PreispiratScraper lê as ofertas do feed RSS do preispirat.ch
type PreispiratScraper struct {
	client *retryablehttp.Client
}

// NewPreispiratScraper cria uma nova instância do scraper do feed
func NewPreispiratScraper(client *retryablehttp.Client) *PreispiratScraper {
	return &PreispiratScraper{client: client}
}

// CanHandle verifica se o scraper pode lidar com a URL fornecida
func (p *PreispiratScraper) CanHandle(rawURL string) bool {
	return hostMatches(rawURL, "preispirat.ch")
}

// FetchCandidates baixa o feed e converte cada item em candidato
func (p *PreispiratScraper) FetchCandidates(ctx context.Context, sourceURL string) ([]models.Candidate, error) {
	body, err := get(ctx, p.client, sourceURL, "application/rss+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler feed RSS: %w", err)
	}
	logger.Log.Infof("Encontrados %d itens no feed", len(feed.Items))

	candidates := make([]models.Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		candidates = append(candidates, itemCandidate(item))
	}
	return candidates, nil
}

func itemCandidate(item *gofeed.Item) models.Candidate {
	title := collapseSpaces(item.Title)
	manufacturer, name := title, ""
	if idx := strings.IndexByte(title, ' '); idx > 0 {
		manufacturer, name = title[:idx], title[idx+1:]
	}

	c := models.Candidate{
		Manufacturer: manufacturer,
		Name:         name,
		URL:          strings.TrimSpace(item.Link),
	}

	// alguns feeds trazem os preços só em content:encoded
	text := descriptionText(item.Description + "\n" + item.Content)
	for _, m := range pricePattern.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			if c.OldPriceText == "" {
				c.OldPriceText = m[2]
			}
		} else if c.NewPriceText == "" {
			c.NewPriceText = m[2]
		}
	}
	if m := shopPattern.FindStringSubmatch(text); m != nil {
		c.Shop = strings.TrimSpace(m[1])
	}
	return c
}

// descriptionText remove o HTML da descrição mantendo as quebras de linha
func descriptionText(description string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(description))
	if err != nil {
		return description
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return doc.Text()
}
