package models

import "time"

// ScraperSummary representa un resumen agregado de las ejecuciones de scraping
// desde que arrancó el proceso. No se persiste.
type ScraperSummary struct {
	Source             string     `json:"source"`   // "browser" o "http"
	TotalRuns          int        `json:"totalRuns"`
	SuccessfulRuns     int        `json:"successfulRuns"`
	FailedRuns         int        `json:"failedRuns"`
	NotReadyRuns       int        `json:"notReadyRuns"`     // Página todavía cargando o timeout
	UpstreamFailures   int        `json:"upstreamFailures"` // Status no exitoso o error de red
	ExtractionFailures int        `json:"extractionFailures"`
	InternalFailures   int        `json:"internalFailures"`
	Retries            int        `json:"retries"`
	TripsObtained      int        `json:"tripsObtained"`   // Viajes válidos extraídos
	EntriesDropped     int        `json:"entriesDropped"`  // Filas descartadas por campos faltantes
	AverageDuration    float64    `json:"averageDuration"` // Segundos
	LastRun            *time.Time `json:"lastRun,omitempty"`
	LastError          string     `json:"lastError,omitempty"`
	SuccessRate        float64    `json:"successRate"` // Porcentaje
}
