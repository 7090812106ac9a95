package debug

import (
	"log"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

// SetEnabled activa o desactiva el envío de eventos al dashboard (DEBUG_DASHBOARD)
func SetEnabled(on bool) {
	enabled.Store(on)
	if on {
		log.Println("🐛 Debug Dashboard habilitado")
	}
}

// IsEnabled retorna si el dashboard de debugging está habilitado
func IsEnabled() bool {
	return enabled.Load()
}

// LogDebug envía un log de nivel debug al dashboard (ej: cada intento de fetch)
func LogDebug(message string, metadata map[string]interface{}) {
	if !IsEnabled() {
		return
	}
	SendLog("grt", "debug", message, metadata)
}

// LogInfo envía un log de nivel info al dashboard
func LogInfo(message string, metadata map[string]interface{}) {
	if !IsEnabled() {
		return
	}
	SendLog("grt", "info", message, metadata)
}

// LogWarn envía un log de nivel warn al dashboard
func LogWarn(message string, metadata map[string]interface{}) {
	if !IsEnabled() {
		return
	}
	SendLog("grt", "warn", message, metadata)
}

// LogError envía un log de nivel error al dashboard
func LogError(message string, metadata map[string]interface{}) {
	if !IsEnabled() {
		return
	}
	SendLog("grt", "error", message, metadata)
}

// UpdateScrapingStatus envía el estado del scraping de NextRide al dashboard
func UpdateScrapingStatus(strategy, status string, lastRun time.Time, processed, errors int) {
	if !IsEnabled() {
		return
	}

	var s ScrapingStatus
	s.NextRide.Strategy = strategy
	s.NextRide.Status = status
	s.NextRide.LastRun = lastRun.UnixMilli()
	s.NextRide.ItemsProcessed = processed
	s.NextRide.Errors = errors

	SendScrapingStatus(s)
}
