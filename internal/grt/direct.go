package grt

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/yourorg/nextride/internal/config"
)

// maxBodyBytes limita lo que se lee de NextRide por respuesta
const maxBodyBytes = 4 << 20

// HTTPOptions configura el fetcher sin navegador
type HTTPOptions struct {
	BaseURL          string
	DataPathTemplate string // ej: "/api/stops/{stop}/trips"; vacío = sin consulta secundaria
	LoadingMarker    string
	UserAgent        string
	Client           *http.Client
}

// HTTPFetcher obtiene la página con un GET directo y, si hay endpoint de datos
// derivable del paradero, prefiere su payload JSON.
type HTTPFetcher struct {
	opts HTTPOptions
}

// NewHTTPFetcher crea el fetcher HTTP
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPFetcher{opts: opts}
}

func (f *HTTPFetcher) Name() string { return config.StrategyHTTP }

// DataURL retorna la URL del endpoint de datos para el paradero, o "" si no está configurado
func (f *HTTPFetcher) DataURL(stopNumber int) string {
	if f.opts.DataPathTemplate == "" {
		return ""
	}
	path := strings.ReplaceAll(f.opts.DataPathTemplate, "{stop}", strconv.Itoa(stopNumber))
	return strings.TrimRight(f.opts.BaseURL, "/") + path
}

// Fetch descarga la página del paradero. Un status no exitoso de la página
// es una falla upstream; una falla del endpoint de datos solo se registra.
func (f *HTTPFetcher) Fetch(ctx context.Context, stopNumber int) (*Content, error) {
	pageURL := StopURL(f.opts.BaseURL, stopNumber)
	log.Printf("🌐 [GRT] GET %s", pageURL)

	page, err := f.get(ctx, pageURL, "text/html")
	if err != nil {
		return nil, err
	}

	if dataURL := f.DataURL(stopNumber); dataURL != "" {
		payload, err := f.get(ctx, dataURL, "application/json")
		switch {
		case err != nil:
			log.Printf("⚠️ [GRT] Endpoint de datos no disponible, se usará el HTML: %v", err)
		case !json.Valid(payload):
			log.Printf("⚠️ [GRT] Endpoint de datos devolvió JSON inválido (%d bytes), se usará el HTML", len(payload))
		default:
			log.Printf("📦 [GRT] Usando payload estructurado de %s", dataURL)
			return &Content{Type: ContentJSON, URL: dataURL, Body: payload}, nil
		}
	}

	if title := documentTitle(page); isLoading(title, f.opts.LoadingMarker) {
		log.Printf("⏳ [GRT] La página devolvió la pantalla de carga (title=%q)", title)
		return nil, NotReady(NotReadyMessage, nil)
	}

	log.Printf("📄 [GRT] HTML obtenido: %d bytes", len(page))
	return &Content{Type: ContentHTML, URL: pageURL, Body: page}, nil
}

func (f *HTTPFetcher) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, Internal(err, "cannot build request for "+url)
	}
	req.Header.Set("Accept", accept)
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}

	resp, err := f.opts.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NotReady(NotReadyMessage, ctx.Err())
		}
		return nil, UpstreamFailure(err, url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, UpstreamStatus(resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, UpstreamFailure(err, url)
	}
	if len(body) > maxBodyBytes {
		return nil, ExtractionFailure(
			errors.Errorf("body larger than %d bytes", maxBodyBytes),
			"response from "+url+" exceeds 4 MiB",
		)
	}
	return body, nil
}
