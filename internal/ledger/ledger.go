// Package ledger guarda o histórico de alertas enviados e faz a deduplicação
// dentro de um ciclo e entre ciclos.
package ledger

import (
	"context"
	"fmt"
	"time"

	"bot-ofertas/internal/models"
	"bot-ofertas/internal/pricing"
)

// DefaultRetention é a janela padrão de retenção do histórico
const DefaultRetention = 24 * time.Hour

// Store é a persistência usada pelo ledger. Cada método é uma única operação atômica.
type Store interface {
	IsAlerted(ctx context.Context, key models.ProductKey) (bool, error)
	RecordAlert(ctx context.Context, rec models.AlertRecord) error
	PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// Ledger aplica as duas camadas de deduplicação sobre um Store
type Ledger struct {
	store     Store
	retention time.Duration
}

// New cria um ledger; retention <= 0 usa DefaultRetention
func New(store Store, retention time.Duration) *Ledger {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Ledger{store: store, retention: retention}
}

// Retention retorna a janela de retenção configurada
func (l *Ledger) Retention() time.Duration {
	return l.retention
}

// Dedup remove repetições dentro do mesmo ciclo; a primeira ocorrência vence
func Dedup(products []models.MatchedProduct) []models.MatchedProduct {
	seen := make(map[models.ProductKey]struct{}, len(products))
	unique := make([]models.MatchedProduct, 0, len(products))
	for _, p := range products {
		key := p.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, p)
	}
	return unique
}

// FilterNew descarta produtos que já constam no histórico.
// Qualquer erro de leitura é devolvido: continuar arriscaria alertas duplicados.
func (l *Ledger) FilterNew(ctx context.Context, products []models.MatchedProduct) (fresh, suppressed []models.MatchedProduct, err error) {
	for _, p := range products {
		alerted, err := l.store.IsAlerted(ctx, p.Key())
		if err != nil {
			return nil, nil, fmt.Errorf("consultar histórico de %s: %w", p.Key(), err)
		}
		if alerted {
			suppressed = append(suppressed, p)
			continue
		}
		fresh = append(fresh, p)
	}
	return fresh, suppressed, nil
}

// Record grava um registro por produto, tenha o envio funcionado ou não
func (l *Ledger) Record(ctx context.Context, products []models.MatchedProduct) (int, error) {
	for i, p := range products {
		rec := models.AlertRecord{
			Key:         p.Key(),
			ProductName: p.Name,
			Discount:    pricing.FormatDiscount(p.DiscountPercent),
			RuleID:      p.MatchedRuleID,
		}
		if err := l.store.RecordAlert(ctx, rec); err != nil {
			return i, fmt.Errorf("gravar alerta de %s: %w", p.Key(), err)
		}
	}
	return len(products), nil
}

// Cleanup apaga registros mais antigos que a janela de retenção
func (l *Ledger) Cleanup(ctx context.Context) (int64, error) {
	return l.store.PurgeOlderThan(ctx, l.retention)
}
