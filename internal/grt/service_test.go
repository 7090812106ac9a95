package grt

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/nextride/internal/debug"
)

type fakeResult struct {
	content *Content
	err     error
}

// fakeFetcher devuelve resultados en orden; el último se repite
type fakeFetcher struct {
	mu      sync.Mutex
	results []fakeResult
	calls   int
	stops   []int
}

func (f *fakeFetcher) Name() string { return "fake" }

func (f *fakeFetcher) Fetch(ctx context.Context, stopNumber int) (*Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops = append(f.stops, stopNumber)
	i := f.calls
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	f.calls++
	return f.results[i].content, f.results[i].err
}

// blockingFetcher espera hasta que se cancele el contexto
type blockingFetcher struct{}

func (blockingFetcher) Name() string { return "blocking" }

func (blockingFetcher) Fetch(ctx context.Context, _ int) (*Content, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newTestService(f Fetcher) *Service {
	return NewService(f, NewExtractor(DefaultSelectors), Options{
		Timeout:    time.Second,
		Retries:    1,
		RetryDelay: time.Millisecond,
	})
}

func threeTripPage() *Content {
	return page(
		row{route: "7", name: "King", destination: "Downtown", departure: "2 min", estimated: true},
		row{route: "8", name: "University", destination: "Fairview", departure: "09:40"},
		row{route: "12", name: "Conestoga", destination: "Fairview", departure: "11 min", estimated: true},
	)
}

func TestSchedule_filtersToRealTime(t *testing.T) {
	f := &fakeFetcher{results: []fakeResult{{content: threeTripPage()}}}
	svc := newTestService(f)

	resp, err := svc.Schedule(context.Background(), 1123)
	require.NoError(t, err)

	assert.Equal(t, 1123, resp.StopNumber)
	require.Len(t, resp.Trips, 2)
	assert.Equal(t, "7", resp.Trips[0].Route)
	assert.Equal(t, "12", resp.Trips[1].Route)
	assert.Equal(t, []int{1123}, f.stops)
}

func TestSchedule_noRealTimeTripsReturnsEmptyList(t *testing.T) {
	f := &fakeFetcher{results: []fakeResult{{content: page(
		row{route: "8", name: "University", destination: "Fairview", departure: "09:40"},
	)}}}
	svc := newTestService(f)

	resp, err := svc.Schedule(context.Background(), 2500)
	require.NoError(t, err)
	assert.Equal(t, 2500, resp.StopNumber)
	assert.NotNil(t, resp.Trips)
	assert.Empty(t, resp.Trips)
}

func TestTrips_returnsAllValidTrips(t *testing.T) {
	f := &fakeFetcher{results: []fakeResult{{content: threeTripPage()}}}
	svc := newTestService(f)

	trips, err := svc.Trips(context.Background(), 1123)
	require.NoError(t, err)
	assert.Len(t, trips, 3)
}

func TestSchedule_retriesOnceWhenNotReady(t *testing.T) {
	f := &fakeFetcher{results: []fakeResult{
		{err: NotReady(NotReadyMessage, nil)},
		{content: threeTripPage()},
	}}
	svc := newTestService(f)

	resp, err := svc.Schedule(context.Background(), 1123)
	require.NoError(t, err)
	assert.Len(t, resp.Trips, 2)
	assert.Equal(t, 2, f.calls)

	stats := svc.Stats()
	assert.Equal(t, 1, stats.SuccessfulRuns)
	assert.Equal(t, 1, stats.Retries)
}

func TestSchedule_givesUpAfterBoundedRetry(t *testing.T) {
	f := &fakeFetcher{results: []fakeResult{{err: NotReady(NotReadyMessage, nil)}}}
	svc := newTestService(f)

	resp, err := svc.Schedule(context.Background(), 1123)
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 2, f.calls)
	assert.Equal(t, KindNotReady, KindOf(err))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(err))
	assert.Equal(t, 1, svc.Stats().NotReadyRuns)
}

func TestSchedule_upstreamFailureIsNotRetried(t *testing.T) {
	f := &fakeFetcher{results: []fakeResult{{err: UpstreamStatus(http.StatusNotFound, "https://nextride.grt.ca/stops/9")}}}
	svc := newTestService(f)

	resp, err := svc.Schedule(context.Background(), 9)
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, KindUpstream, KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
	assert.Equal(t, 1, svc.Stats().UpstreamFailures)
}

func TestSchedule_unclassifiedErrorBecomesInternal(t *testing.T) {
	cause := errors.New("chrome failed to start")
	f := &fakeFetcher{results: []fakeResult{{err: cause}}}
	svc := newTestService(f)

	_, err := svc.Schedule(context.Background(), 9)
	require.Error(t, err)

	var se *ScrapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindInternal, se.Kind)
	assert.Equal(t, cause, errors.Cause(err))
	assert.Contains(t, err.Error(), "chrome failed to start")
}

func TestSchedule_timeoutIsNotReady(t *testing.T) {
	svc := NewService(blockingFetcher{}, NewExtractor(DefaultSelectors), Options{
		Timeout:    50 * time.Millisecond,
		Retries:    1,
		RetryDelay: time.Millisecond,
	})

	start := time.Now()
	_, err := svc.Schedule(context.Background(), 1123)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, KindNotReady, KindOf(err))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(err))
}

func TestSchedule_extractionFailureSurfaces(t *testing.T) {
	f := &fakeFetcher{results: []fakeResult{{content: &Content{Type: ContentJSON, Body: []byte(`{"trips":42}`)}}}}
	svc := newTestService(f)

	_, err := svc.Schedule(context.Background(), 1123)
	require.Error(t, err)
	assert.Equal(t, KindExtraction, KindOf(err))
	assert.Equal(t, 1, svc.Stats().ExtractionFailures)
}

func TestService_statsSnapshot(t *testing.T) {
	f := &fakeFetcher{results: []fakeResult{{content: page(
		row{route: "7", name: "King", departure: "2 min", estimated: true},
		row{route: "8", name: "University"},
	)}}}
	svc := newTestService(f)

	for i := 0; i < 3; i++ {
		_, err := svc.Schedule(context.Background(), 1123)
		require.NoError(t, err)
	}

	stats := svc.Stats()
	assert.Equal(t, "fake", stats.Source)
	assert.Equal(t, "fake", svc.Strategy())
	assert.Equal(t, 3, stats.TotalRuns)
	assert.Equal(t, 3, stats.TripsObtained)
	assert.Equal(t, 3, stats.EntriesDropped)
	assert.Equal(t, float64(100), stats.SuccessRate)
	require.NotNil(t, stats.LastRun)
}

func TestSchedule_oversizedStopPageIsNotAnEmptySuccess(t *testing.T) {
	trip := tripRow(row{route: "7", name: "King", destination: "Downtown", departure: "3 min", estimated: true})
	body := "<html><head><title>Stop 1123</title></head><body>" +
		strings.Repeat("<p>.</p>", maxBodyBytes/8) + trip + "</body></html>"
	srv := newUpstream(t, map[string]func(http.ResponseWriter){
		"/stops/1123": respond(http.StatusOK, body),
	})
	svc := newTestService(NewHTTPFetcher(HTTPOptions{BaseURL: srv.URL, LoadingMarker: "Loading"}))

	resp, err := svc.Schedule(context.Background(), 1123)
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, KindExtraction, KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
}

func TestSchedule_withDashboardEnabled(t *testing.T) {
	debug.SetEnabled(true)
	t.Cleanup(func() { debug.SetEnabled(false) })

	f := &fakeFetcher{results: []fakeResult{
		{err: NotReady(NotReadyMessage, nil)},
		{content: threeTripPage()},
	}}
	svc := newTestService(f)

	resp, err := svc.Schedule(context.Background(), 1123)
	require.NoError(t, err)
	assert.Len(t, resp.Trips, 2)
	assert.Equal(t, 2, f.calls)
}
