package grt

import (
	"context"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/yourorg/nextride/internal/config"
	"github.com/yourorg/nextride/internal/debug"
	"github.com/yourorg/nextride/internal/models"
)

// Options controla tiempos y reintentos del servicio
type Options struct {
	Timeout    time.Duration // Límite total por solicitud, incluye reintentos
	Retries    int           // Reintentos ante página no lista
	RetryDelay time.Duration
}

// Service ejecuta el pipeline completo: obtener página, extraer y filtrar viajes
type Service struct {
	fetcher   Fetcher
	extractor *Extractor
	opts      Options
	stats     *Stats
}

// NewService crea el servicio con un fetcher y extractor ya construidos
func NewService(fetcher Fetcher, extractor *Extractor, opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &Service{
		fetcher:   fetcher,
		extractor: extractor,
		opts:      opts,
		stats:     NewStats(fetcher.Name()),
	}
}

// NewServiceFromConfig arma el servicio con la estrategia configurada
func NewServiceFromConfig(cfg config.Config) (*Service, error) {
	fetcher, err := NewFetcher(cfg)
	if err != nil {
		return nil, err
	}
	return NewService(fetcher, NewExtractor(DefaultSelectors), Options{
		Timeout:    cfg.RequestTimeout,
		Retries:    cfg.RetryNotReady,
		RetryDelay: cfg.RetryDelay,
	}), nil
}

// Strategy retorna el nombre del fetcher en uso
func (s *Service) Strategy() string { return s.fetcher.Name() }

// Stats retorna un resumen de las ejecuciones desde el arranque
func (s *Service) Stats() models.ScraperSummary { return s.stats.Snapshot() }

// Schedule retorna los viajes en tiempo real del paradero.
// Si ninguno es estimado la lista queda vacía; no se recurre a los viajes programados.
func (s *Service) Schedule(ctx context.Context, stopNumber int) (*models.ScheduleResponse, error) {
	trips, err := s.Trips(ctx, stopNumber)
	if err != nil {
		return nil, err
	}
	return &models.ScheduleResponse{
		StopNumber: stopNumber,
		Trips:      FilterRealTime(trips),
	}, nil
}

// Trips retorna todos los viajes válidos del paradero en el orden de la página
func (s *Service) Trips(ctx context.Context, stopNumber int) ([]models.Trip, error) {
	session := uuid.NewString()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	log.Printf("📥 [GRT] [%s] Scraping paradero %d (estrategia %s)", session, stopNumber, s.fetcher.Name())

	ext, retries, err := s.scrape(ctx, session, stopNumber)
	elapsed := time.Since(start)
	s.stats.Record(err, ext, retries, elapsed)
	s.publishStatus(err)

	if err != nil {
		log.Printf("❌ [GRT] [%s] Paradero %d falló tras %s: %v", session, stopNumber, elapsed.Round(time.Millisecond), err)
		debug.LogError("scrape failed", map[string]interface{}{
			"session": session,
			"stop":    stopNumber,
			"kind":    KindOf(err).String(),
			"error":   err.Error(),
		})
		return nil, err
	}

	for _, d := range ext.Dropped {
		log.Printf("⚠️ [GRT] [%s] Fila %d descartada: %s", session, d.Index, d.Reason)
	}
	if len(ext.Dropped) > 0 {
		debug.LogWarn("trip entries dropped", map[string]interface{}{
			"session": session,
			"stop":    stopNumber,
			"dropped": ext.Dropped,
		})
	}

	log.Printf("✅ [GRT] [%s] Paradero %d: %d viajes (%d descartados) en %s",
		session, stopNumber, len(ext.Trips), len(ext.Dropped), elapsed.Round(time.Millisecond))
	debug.LogInfo("scrape completed", map[string]interface{}{
		"session":     session,
		"stop":        stopNumber,
		"trips":       len(ext.Trips),
		"duration_ms": elapsed.Milliseconds(),
	})

	return ext.Trips, nil
}

// scrape ejecuta fetch + extract con un reintento acotado cuando la página no está lista
func (s *Service) scrape(ctx context.Context, session string, stopNumber int) (*Extraction, int, error) {
	var (
		result   *Extraction
		attempts int
	)

	operation := func() error {
		attempts++
		debug.LogDebug("fetch attempt", map[string]interface{}{
			"session":  session,
			"stop":     stopNumber,
			"attempt":  attempts,
			"strategy": s.fetcher.Name(),
		})
		content, err := s.fetcher.Fetch(ctx, stopNumber)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(NotReady(NotReadyMessage, ctx.Err()))
			}
			if KindOf(err) == KindNotReady {
				log.Printf("🔁 [GRT] [%s] Intento %d: página no lista", session, attempts)
				return err
			}
			return backoff.Permanent(err)
		}

		ext, err := s.extractor.Extract(content)
		if err != nil {
			return backoff.Permanent(err)
		}
		result = ext
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.opts.RetryDelay), uint64(s.opts.Retries)),
		ctx,
	)

	err := backoff.Retry(operation, policy)
	retries := 0
	if attempts > 1 {
		retries = attempts - 1
	}
	if err != nil {
		return nil, retries, normalize(err)
	}
	return result, retries, nil
}

func (s *Service) publishStatus(lastErr error) {
	if !debug.IsEnabled() {
		return
	}
	summary := s.stats.Snapshot()
	status := "ok"
	if lastErr != nil {
		status = KindOf(lastErr).String()
	}
	var lastRun time.Time
	if summary.LastRun != nil {
		lastRun = *summary.LastRun
	}
	debug.UpdateScrapingStatus(summary.Source, status, lastRun, summary.SuccessfulRuns, summary.FailedRuns)
}

// FilterRealTime conserva solo los viajes estimados, en el mismo orden
func FilterRealTime(trips []models.Trip) []models.Trip {
	out := make([]models.Trip, 0, len(trips))
	for _, t := range trips {
		if t.IsRealTime {
			out = append(out, t)
		}
	}
	return out
}
