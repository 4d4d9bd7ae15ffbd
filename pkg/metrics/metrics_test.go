package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestEmitSchurNumber(t *testing.T) {
	EmitSchurNumber(2, 5)
	EmitSchurNumber(3, 14)
	assert.Equal(t, float64(5), testutil.ToFloat64(schurNumber.WithLabelValues("2")))
	assert.Equal(t, float64(14), testutil.ToFloat64(schurNumber.WithLabelValues("3")))
}

func TestEmitCursor(t *testing.T) {
	EmitCursor(3, 9)
	assert.Equal(t, float64(3), testutil.ToFloat64(searchCursor.WithLabelValues(ColorsDimension)))
	assert.Equal(t, float64(9), testutil.ToFloat64(searchCursor.WithLabelValues(NumbersDimension)))
}

func TestEmitQueryThreadSafety(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			EmitQuery("find", "sat", time.Millisecond)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, testutil.CollectAndCount(queryDurationSummary))
}
