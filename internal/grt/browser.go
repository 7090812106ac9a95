package grt

import (
	"context"
	"log"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
	"github.com/yourorg/nextride/internal/config"
)

const readyPollInterval = 250 * time.Millisecond

// BrowserFetcher renderiza la página con Chrome headless vía chromedp.
// NextRide arma la lista de viajes en el cliente, así que el HTML crudo no sirve.
type BrowserFetcher struct {
	baseURL string
	marker  string
	cfg     config.BrowserConfig
}

// NewBrowserFetcher crea el fetcher basado en Chrome
func NewBrowserFetcher(baseURL, loadingMarker string, cfg config.BrowserConfig) *BrowserFetcher {
	return &BrowserFetcher{
		baseURL: baseURL,
		marker:  loadingMarker,
		cfg:     cfg,
	}
}

func (f *BrowserFetcher) Name() string { return config.StrategyBrowser }

// allocatorOptions arma los flags de Chrome a partir de la configuración
func (f *BrowserFetcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-software-rasterizer", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if !f.cfg.Sandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if f.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(f.cfg.UserAgent))
	}
	if f.cfg.BinaryPath != "" {
		opts = append(opts, chromedp.ExecPath(f.cfg.BinaryPath))
	}
	return opts
}

// Fetch abre una sesión de Chrome propia, navega al paradero y retorna el HTML renderizado.
// La sesión se cierra siempre al salir, con o sin error.
func (f *BrowserFetcher) Fetch(ctx context.Context, stopNumber int) (*Content, error) {
	url := StopURL(f.baseURL, stopNumber)
	log.Printf("🌐 [GRT] Iniciando Chrome headless para %s", url)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, f.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer func() {
		cancelBrowser()
		log.Printf("🧹 [GRT] Sesión de Chrome cerrada (%s)", url)
	}()

	resp, err := chromedp.RunResponse(browserCtx, chromedp.Navigate(url))
	if err != nil {
		return nil, f.classify(ctx, err, "error navigating to "+url)
	}
	if resp != nil && (resp.Status < 200 || resp.Status >= 300) {
		return nil, UpstreamStatus(int(resp.Status), url)
	}

	var htmlContent string
	err = chromedp.Run(browserCtx,
		chromedp.WaitReady(`body`, chromedp.ByQuery),
		chromedp.Sleep(f.cfg.SettleInterval),
		chromedp.ActionFunc(f.waitUntilRendered),
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return nil, f.classify(ctx, err, "error reading rendered page "+url)
	}

	log.Printf("📄 [GRT] HTML obtenido: %d bytes", len(htmlContent))

	return &Content{Type: ContentHTML, URL: url, Body: []byte(htmlContent)}, nil
}

// waitUntilRendered consulta el título hasta que deja de indicar carga o vence ReadyTimeout
func (f *BrowserFetcher) waitUntilRendered(ctx context.Context) error {
	deadline := time.Now().Add(f.cfg.ReadyTimeout)
	for {
		var title string
		if err := chromedp.Title(&title).Do(ctx); err != nil {
			return err
		}
		if !isLoading(title, f.marker) {
			return nil
		}
		if !time.Now().Before(deadline) {
			log.Printf("⏳ [GRT] La página sigue en pantalla de carga (title=%q)", title)
			return NotReady(NotReadyMessage, nil)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(readyPollInterval):
		}
	}
}

// classify decide el tipo de falla de una ejecución de chromedp
func (f *BrowserFetcher) classify(ctx context.Context, err error, message string) error {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se
	}
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return NotReady(NotReadyMessage, err)
	}
	log.Printf("❌ [GRT] %s: %v", message, err)
	return Internal(err, message)
}
