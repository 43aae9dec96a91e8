package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scanCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_ofertas_scan_cycles_total",
			Help: "Total number of scan cycles by outcome.",
		},
		[]string{"outcome"},
	)
	scanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bot_ofertas_scan_duration_seconds",
			Help:    "Histogram of scan cycle durations.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)
	alertsSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_ofertas_alert_messages_sent_total",
			Help: "Total number of alert messages delivered.",
		},
	)
	alertSendErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_ofertas_alert_send_errors_total",
			Help: "Total number of alert messages that failed to send.",
		},
	)
	productsRecordedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_ofertas_products_recorded_total",
			Help: "Total number of products written to the alert history.",
		},
	)
	scansDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_ofertas_scan_triggers_dropped_total",
			Help: "Total number of scan triggers dropped because a cycle was running.",
		},
	)
)

func init() {
	prometheus.MustRegister(scanCyclesTotal)
	prometheus.MustRegister(scanDuration)
	prometheus.MustRegister(alertsSentTotal)
	prometheus.MustRegister(alertSendErrorsTotal)
	prometheus.MustRegister(productsRecordedTotal)
	prometheus.MustRegister(scansDroppedTotal)
}

// RecordCycle registra o resultado e a duração de um ciclo
func RecordCycle(outcome string, duration time.Duration) {
	scanCyclesTotal.WithLabelValues(outcome).Inc()
	scanDuration.Observe(duration.Seconds())
}

// RecordSend conta uma mensagem enviada ou com falha
func RecordSend(err error) {
	if err != nil {
		alertSendErrorsTotal.Inc()
		return
	}
	alertsSentTotal.Inc()
}

// RecordProducts soma produtos gravados no histórico
func RecordProducts(n int) {
	productsRecordedTotal.Add(float64(n))
}

// RecordDroppedTrigger conta um disparo ignorado por já haver ciclo em andamento
func RecordDroppedTrigger() {
	scansDroppedTotal.Inc()
}

// Handler retorna o handler HTTP que exporta as métricas
func Handler() http.Handler {
	return promhttp.Handler()
}
