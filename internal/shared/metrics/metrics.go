package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	analysesStartedTotal   atomic.Uint64
	analysesCompletedTotal atomic.Uint64
	qualityGateTotal       atomic.Uint64
	aiMalformedTotal       atomic.Uint64

	analysesFailedTotal = newLabeledCounter("code")
	ocrFallbackTotal    = newLabeledCounter("result")

	analysisDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncAnalysisStarted increments the started counter.
func IncAnalysisStarted() {
	analysesStartedTotal.Add(1)
}

// IncAnalysisCompleted increments the completed counter.
func IncAnalysisCompleted() {
	analysesCompletedTotal.Add(1)
}

// IncAnalysisFailed increments the failed counter for an error code.
func IncAnalysisFailed(code string) {
	analysesFailedTotal.Inc(code)
}

// IncQualityGateTriggered counts extractions that failed the printable/word gate.
func IncQualityGateTriggered() {
	qualityGateTotal.Add(1)
}

// IncOCRFallback counts OCR attempts by outcome (accepted, rejected, error, skipped).
func IncOCRFallback(result string) {
	ocrFallbackTotal.Inc(result)
}

// IncAIMalformed counts AI replies that could not be parsed.
func IncAIMalformed() {
	aiMalformedTotal.Add(1)
}

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "analyses_started_total", "Total analyses started", analysesStartedTotal.Load())
	writeCounter(&buf, "analyses_completed_total", "Total analyses completed", analysesCompletedTotal.Load())
	writeLabeledCounter(&buf, "analyses_failed_total", "Total analyses failed by error code", analysesFailedTotal)
	writeCounter(&buf, "quality_gate_triggered_total", "Extractions below the readable-text gate", qualityGateTotal.Load())
	writeLabeledCounter(&buf, "ocr_fallback_total", "OCR fallback attempts by result", ocrFallbackTotal)
	writeCounter(&buf, "ai_malformed_total", "AI replies that failed to parse", aiMalformedTotal.Load())
	writeHistogram(&buf, "analysis_duration_ms", "Analysis duration in milliseconds", analysisDuration.Snapshot())
	return buf.String()
}

type labeledCounter struct {
	mu     sync.Mutex
	label  string
	values map[string]uint64
}

func newLabeledCounter(label string) *labeledCounter {
	return &labeledCounter{label: label, values: make(map[string]uint64)}
}

func (l *labeledCounter) Inc(value string) {
	if value == "" {
		value = "unknown"
	}
	l.mu.Lock()
	l.values[value]++
	l.mu.Unlock()
}

func (l *labeledCounter) snapshot() ([]string, map[string]uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]uint64, len(l.values))
	keys := make([]string, 0, len(l.values))
	for k, v := range l.values {
		out[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe counts value into the first bucket whose bound covers it.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeledCounter(buf *bytes.Buffer, name, help string, counter *labeledCounter) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys, values := counter.snapshot()
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, counter.label, k, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
