package grt

import (
	"sync"
	"time"

	"github.com/yourorg/nextride/internal/models"
)

// Stats acumula contadores de scraping en memoria, seguro para uso concurrente
type Stats struct {
	mu            sync.Mutex
	source        string
	summary       models.ScraperSummary
	totalDuration time.Duration
}

// NewStats crea contadores vacíos para la estrategia dada
func NewStats(source string) *Stats {
	return &Stats{source: source}
}

// Record registra una ejecución completa (con sus reintentos)
func (s *Stats) Record(err error, ext *Extraction, retries int, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.summary.TotalRuns++
	s.summary.Retries += retries
	s.summary.LastRun = &now
	s.totalDuration += duration

	if err != nil {
		s.summary.FailedRuns++
		s.summary.LastError = err.Error()
		switch KindOf(err) {
		case KindNotReady:
			s.summary.NotReadyRuns++
		case KindUpstream:
			s.summary.UpstreamFailures++
		case KindExtraction:
			s.summary.ExtractionFailures++
		default:
			s.summary.InternalFailures++
		}
		return
	}

	s.summary.SuccessfulRuns++
	if ext != nil {
		s.summary.TripsObtained += len(ext.Trips)
		s.summary.EntriesDropped += len(ext.Dropped)
	}
}

// Snapshot retorna una copia del resumen actual
func (s *Stats) Snapshot() models.ScraperSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.summary
	out.Source = s.source
	if out.LastRun != nil {
		last := *out.LastRun
		out.LastRun = &last
	}
	if out.TotalRuns > 0 {
		out.AverageDuration = s.totalDuration.Seconds() / float64(out.TotalRuns)
		out.SuccessRate = float64(out.SuccessfulRuns) * 100 / float64(out.TotalRuns)
	}
	return out
}
