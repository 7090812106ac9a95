package grt

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ErrorKind clasifica las fallas del pipeline de scraping
type ErrorKind int

const (
	KindInternal   ErrorKind = iota // Falla inesperada (ej: Chrome no arranca)
	KindNotReady                    // La página seguía cargando o se agotó el tiempo
	KindUpstream                    // NextRide respondió con error o no se pudo contactar
	KindExtraction                  // El documento completo no se pudo interpretar
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotReady:
		return "not_ready"
	case KindUpstream:
		return "upstream"
	case KindExtraction:
		return "extraction"
	default:
		return "internal"
	}
}

// NotReadyMessage es el detalle que ve el cliente cuando la página no terminó de renderizar
const NotReadyMessage = "Page did not load properly - still showing loading screen"

// ScrapeError es el error tipado que cruza desde el scraper hasta el handler HTTP.
// Err conserva la causa original para diagnóstico.
type ScrapeError struct {
	Kind       ErrorKind
	StatusCode int // Status devuelto por NextRide, 0 si no aplica
	Message    string
	Err        error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// Cause permite que errors.Cause llegue a la causa raíz
func (e *ScrapeError) Cause() error { return e.Err }

// NotReady crea un error de página no lista
func NotReady(message string, cause error) *ScrapeError {
	return &ScrapeError{Kind: KindNotReady, Message: message, Err: cause}
}

// UpstreamStatus crea un error por status HTTP no exitoso del proveedor
func UpstreamStatus(status int, url string) *ScrapeError {
	return &ScrapeError{
		Kind:       KindUpstream,
		StatusCode: status,
		Message:    fmt.Sprintf("upstream returned status %d for %s", status, url),
	}
}

// UpstreamFailure crea un error por falla de red contra el proveedor
func UpstreamFailure(cause error, url string) *ScrapeError {
	return &ScrapeError{
		Kind:    KindUpstream,
		Message: "error contacting " + url,
		Err:     errors.WithStack(cause),
	}
}

// ExtractionFailure crea un error cuando el documento completo es ilegible
func ExtractionFailure(cause error, message string) *ScrapeError {
	return &ScrapeError{Kind: KindExtraction, Message: message, Err: errors.WithStack(cause)}
}

// Internal crea un error para cualquier otra falla
func Internal(cause error, message string) *ScrapeError {
	return &ScrapeError{Kind: KindInternal, Message: message, Err: errors.WithStack(cause)}
}

// KindOf retorna la clasificación de err. Un deadline vencido cuenta como NotReady.
func KindOf(err error) ErrorKind {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindNotReady
	}
	return KindInternal
}

// HTTPStatus traduce un error del scraper al status que ve el cliente
func HTTPStatus(err error) int {
	if KindOf(err) == KindNotReady {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// normalize asegura que todo error que sale del servicio sea un *ScrapeError
func normalize(err error) *ScrapeError {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NotReady(NotReadyMessage, err)
	}
	return Internal(err, "scrape failed")
}
