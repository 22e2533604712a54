package risk

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report(i int) Analysis {
	return Analysis{
		ID:               fmt.Sprintf("r%03d", i),
		Timestamp:        fixedTime.Add(time.Duration(i) * time.Minute),
		OverallRiskScore: float64(i),
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	t.Parallel()

	h := NewHistory(3)
	for i := range 3 {
		assert.False(t, h.Add(report(i)))
	}
	assert.True(t, h.Add(report(3)))
	assert.True(t, h.Add(report(4)))

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 3, h.Cap())

	var ids []string
	for _, a := range h.List() {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"r002", "r003", "r004"}, ids)

	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, "r004", latest.ID)

	_, ok = h.Get("r000")
	assert.False(t, ok)
}

func TestHistoryDefaultCapacity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultHistoryCapacity, NewHistory(0).Cap())
	assert.Equal(t, DefaultHistoryCapacity, NewHistory(-5).Cap())
}

func TestHistoryEmpty(t *testing.T) {
	t.Parallel()

	h := NewHistory(2)
	_, ok := h.Latest()
	assert.False(t, ok)
	assert.Empty(t, h.List())
	assert.Empty(t, h.Since(time.Time{}))
}

func TestHistoryLookups(t *testing.T) {
	t.Parallel()

	h := NewHistory(10)
	for i := range 5 {
		h.Add(report(i))
	}

	a, ok := h.Get("r003")
	require.True(t, ok)
	assert.Equal(t, 3.0, a.OverallRiskScore)

	a, ok = h.At(fixedTime.Add(2 * time.Minute))
	require.True(t, ok)
	assert.Equal(t, "r002", a.ID)

	_, ok = h.At(fixedTime.Add(30 * time.Second))
	assert.False(t, ok)

	since := h.Since(fixedTime.Add(3 * time.Minute))
	require.Len(t, since, 2)
	assert.Equal(t, "r003", since[0].ID)
	assert.Equal(t, "r004", since[1].ID)
}

func TestHistoryListIsACopy(t *testing.T) {
	t.Parallel()

	h := NewHistory(2)
	h.Add(report(1))
	list := h.List()
	list[0].ID = "changed"

	a, _ := h.Latest()
	assert.Equal(t, "r001", a.ID)
}

func TestHistoryDeepCopiesReports(t *testing.T) {
	t.Parallel()

	h := NewHistory(2)
	a := report(1)
	a.CorrelationMatrix = map[string]map[string]float64{"EURUSD": {"GBPUSD": 0.8}}
	a.Recommendations = []string{"keep"}
	a.Degraded = []string{"var95"}
	h.Add(a)

	// mutating the caller's copy after Add does not reach the ring
	a.CorrelationMatrix["EURUSD"]["GBPUSD"] = 0
	a.Recommendations[0] = "changed"

	got, ok := h.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, 0.8, got.CorrelationMatrix["EURUSD"]["GBPUSD"])
	assert.Equal(t, []string{"keep"}, got.Recommendations)

	// neither does mutating a returned report
	got.CorrelationMatrix["EURUSD"]["GBPUSD"] = -1
	got.Degraded[0] = "changed"
	listed := h.List()
	listed[0].Recommendations[0] = "changed"

	again, _ := h.Latest()
	assert.Equal(t, 0.8, again.CorrelationMatrix["EURUSD"]["GBPUSD"])
	assert.Equal(t, []string{"var95"}, again.Degraded)
	assert.Equal(t, []string{"keep"}, again.Recommendations)
}

func TestHistoryConcurrentAdd(t *testing.T) {
	t.Parallel()

	h := NewHistory(50)
	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				h.Add(report(w*100 + i))
				h.List()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, h.Len())
}
