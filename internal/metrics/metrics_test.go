package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(scanCyclesTotal.WithLabelValues("completed"))
	RecordCycle("completed", 2*time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(scanCyclesTotal.WithLabelValues("completed")))

	sent, failed := testutil.ToFloat64(alertsSentTotal), testutil.ToFloat64(alertSendErrorsTotal)
	RecordSend(nil)
	RecordSend(errors.New("timeout"))
	assert.Equal(t, sent+1, testutil.ToFloat64(alertsSentTotal))
	assert.Equal(t, failed+1, testutil.ToFloat64(alertSendErrorsTotal))

	recorded := testutil.ToFloat64(productsRecordedTotal)
	RecordProducts(3)
	assert.Equal(t, recorded+3, testutil.ToFloat64(productsRecordedTotal))
}

func TestHandler(t *testing.T) {
	RecordDroppedTrigger()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "bot_ofertas_scan_triggers_dropped_total")
}
