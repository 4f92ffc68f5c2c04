package metrics

import (
	"sync/atomic"
	"time"
)

// ExplainMetric describes the cost of one attribution run.
type ExplainMetric struct {
	Method      string
	Gamma       float64
	StartTime   time.Time
	Duration    time.Duration
	Evaluations int // Coalition values computed
	Predictions int // Boards expanded by return predictors
	CacheHits   int
}

type Collector interface {
	Start(method string, gamma float64)
	AddEvaluation()
	AddPrediction()
	AddCacheHit()
	Complete() ExplainMetric
}

type collector struct {
	method      string
	gamma       float64
	startTime   time.Time
	evaluations atomic.Int64
	predictions atomic.Int64
	cacheHits   atomic.Int64
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(method string, gamma float64) {
	m.startTime = time.Now()
	m.method = method
	m.gamma = gamma
	m.evaluations.Store(0)
	m.predictions.Store(0)
	m.cacheHits.Store(0)
}

func (m *collector) AddEvaluation() {
	m.evaluations.Add(1)
}

func (m *collector) AddPrediction() {
	m.predictions.Add(1)
}

func (m *collector) AddCacheHit() {
	m.cacheHits.Add(1)
}

func (m *collector) Complete() ExplainMetric {
	return ExplainMetric{
		Method:      m.method,
		Gamma:       m.gamma,
		StartTime:   m.startTime,
		Duration:    time.Since(m.startTime),
		Evaluations: int(m.evaluations.Load()),
		Predictions: int(m.predictions.Load()),
		CacheHits:   int(m.cacheHits.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(method string, gamma float64) {}
func (m *dummyCollector) AddEvaluation()                     {}
func (m *dummyCollector) AddPrediction()                     {}
func (m *dummyCollector) AddCacheHit()                       {}
func (m *dummyCollector) Complete() ExplainMetric            { return ExplainMetric{} }
