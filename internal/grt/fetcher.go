package grt

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"github.com/yourorg/nextride/internal/config"
)

// ContentType indica cómo debe interpretarse el cuerpo obtenido
type ContentType int

const (
	ContentHTML ContentType = iota // Markup de la página del paradero
	ContentJSON                    // Payload del endpoint de datos
)

// Content es lo que un Fetcher entrega al Extractor
type Content struct {
	Type ContentType
	URL  string
	Body []byte
}

// Fetcher obtiene el contenido de la página de un paradero.
// Cada llamada es independiente: no comparte sesión de navegador con otras.
type Fetcher interface {
	Fetch(ctx context.Context, stopNumber int) (*Content, error)
	Name() string
}

// NewFetcher construye la estrategia indicada en la configuración
func NewFetcher(cfg config.Config) (Fetcher, error) {
	switch cfg.FetchStrategy {
	case config.StrategyBrowser:
		return NewBrowserFetcher(cfg.ProviderBaseURL, cfg.LoadingMarker, cfg.Browser), nil
	case config.StrategyHTTP:
		return NewHTTPFetcher(HTTPOptions{
			BaseURL:          cfg.ProviderBaseURL,
			DataPathTemplate: cfg.DataPathTemplate,
			LoadingMarker:    cfg.LoadingMarker,
			UserAgent:        cfg.Browser.UserAgent,
			Client:           &http.Client{Timeout: cfg.RequestTimeout},
		}), nil
	default:
		return nil, errors.Errorf("unknown fetch strategy %q", cfg.FetchStrategy)
	}
}

// StopURL arma la URL pública del paradero: {base}/stops/{stop}
func StopURL(baseURL string, stopNumber int) string {
	return strings.TrimRight(baseURL, "/") + "/stops/" + strconv.Itoa(stopNumber)
}

// isLoading detecta la pantalla de carga por el título del documento
func isLoading(title, marker string) bool {
	return marker != "" && strings.Contains(title, marker)
}

// documentTitle lee el <title> de un HTML crudo
func documentTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
