package upstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"guide_gateway/internal/adapters/upstream"
	"guide_gateway/internal/domain"
)

const (
	guideID      = "550e8400-e29b-41d4-a716-446655440000"
	itemID       = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	restaurantID = "6ba7b811-9dad-11d1-80b4-00c04fd430c8"
)

func newClient(t *testing.T, base string, opts upstream.Options) *upstream.Client {
	t.Helper()
	cl, err := upstream.New("guide", base, opts)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return cl
}

func asUpstream(t *testing.T, err error) *domain.UpstreamError {
	t.Helper()
	var ue *domain.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *domain.UpstreamError, got %T (%v)", err, err)
	}
	return ue
}

func guideJSON() map[string]any {
	return map[string]any{
		"id":               guideID,
		"title":            "Bangkok street food",
		"socialTitle":      "Street food",
		"shortDescription": "short",
		"description":      "long",
		"coverPhoto": map[string]any{
			"id":       "c1",
			"smallUrl": "https://example.com/small.jpg",
			"largeUrl": "https://example.com/large.jpg",
		},
		"tags":      []string{"thai"},
		"writeDate": "1 Jan 2023",
		"createdAt": "2023-01-01T00:00:00Z",
		"updatedAt": "2023-01-02T00:00:00Z",
		"items":     []string{itemID},
	}
}

func restaurantJSON() map[string]any {
	return map[string]any{
		"id":              restaurantID,
		"name":            "Sample Restaurant",
		"rating":          4.5,
		"numberOfReviews": 150,
		"url":             "https://example.com/restaurant",
		"address":         "123 Sample St",
		"lat":             13.75,
		"lng":             100.5,
		"phoneNo":         "123-456-7890",
		"categories":      []string{"Thai"},
		"workingHours": []map[string]any{
			{"day": 1, "open": "9:00", "close": "21:00"},
		},
		"official": true,
		"delivery": false,
		"pickup":   true,
	}
}

func TestNew_InvalidBase(t *testing.T) {
	if _, err := upstream.New("guide", "localhost:8888", upstream.Options{}); err == nil {
		t.Fatalf("expected error for base without scheme")
	}
}

func TestGuideClient_GetGuide(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(guideJSON())
	}))
	defer ts.Close()

	gc := upstream.NewGuideClient(newClient(t, ts.URL+"/", upstream.Options{}))
	g, err := gc.GetGuide(context.Background(), guideID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if gotPath != "/guides/"+guideID {
		t.Fatalf("path: %s", gotPath)
	}
	if g.Title != "Bangkok street food" || len(g.Items) != 1 || g.Items[0] != itemID {
		t.Fatalf("unexpected guide: %+v", g)
	}
}

func TestGuideClient_ListGuideIDs_NullBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	}))
	defer ts.Close()

	ids, err := upstream.NewGuideClient(newClient(t, ts.URL, upstream.Options{})).ListGuideIDs(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ids == nil || len(ids) != 0 {
		t.Fatalf("expected empty non-nil ids, got %#v", ids)
	}
}

func TestClient_NoRetryByDefault(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := upstream.NewGuideClient(newClient(t, ts.URL, upstream.Options{})).ListGuideIDs(context.Background())
	ue := asUpstream(t, err)
	if ue.Status != http.StatusServiceUnavailable {
		t.Fatalf("status: %d", ue.Status)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected exactly 1 call, got %d", n)
	}
}

func TestClient_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(http.StatusBadGateway)
		default:
			_ = json.NewEncoder(w).Encode([]string{guideID})
		}
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ids, err := upstream.NewGuideClient(newClient(t, ts.URL, upstream.Options{Retries: 2})).ListGuideIDs(ctx)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(ids) != 1 || ids[0] != guideID {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if n := atomic.LoadInt32(&hits); n != 3 {
		t.Fatalf("expected 3 calls due to retries, got %d", n)
	}
}

func TestClient_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	_, err := upstream.NewRestaurantClient(newClient(t, ts.URL, upstream.Options{Retries: 3})).
		GetRestaurant(context.Background(), restaurantID)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if ue := asUpstream(t, err); ue.Status != http.StatusNotFound || ue.Path != "/restaurants/"+restaurantID {
		t.Fatalf("unexpected error: %+v", ue)
	}
}

func TestClient_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()

	_, err := upstream.NewGuideClient(newClient(t, ts.URL, upstream.Options{Timeout: 50 * time.Millisecond})).
		ListGuideIDs(context.Background())
	ue := asUpstream(t, err)
	if ue.Status != 0 {
		t.Fatalf("expected no status on timeout, got %d", ue.Status)
	}
	if !strings.Contains(ue.Message, "timeout") {
		t.Fatalf("unexpected message: %s", ue.Message)
	}
}

func TestClient_MalformedPayloads(t *testing.T) {
	cases := map[string]struct {
		body  any
		fetch func(*upstream.Client) error
	}{
		"guide missing title": {
			body: func() map[string]any { g := guideJSON(); delete(g, "title"); return g }(),
			fetch: func(c *upstream.Client) error {
				_, err := upstream.NewGuideClient(c).GetGuide(context.Background(), guideID)
				return err
			},
		},
		"restaurant rating out of range": {
			body: func() map[string]any { r := restaurantJSON(); r["rating"] = 7; return r }(),
			fetch: func(c *upstream.Client) error {
				_, err := upstream.NewRestaurantClient(c).GetRestaurant(context.Background(), restaurantID)
				return err
			},
		},
		"restaurant bad opening hours": {
			body: func() map[string]any {
				r := restaurantJSON()
				r["workingHours"] = []map[string]any{{"day": 8, "open": "9am", "close": "21:00"}}
				return r
			}(),
			fetch: func(c *upstream.Client) error {
				_, err := upstream.NewRestaurantClient(c).GetRestaurant(context.Background(), restaurantID)
				return err
			},
		},
		"item not json": {
			body: "<html>",
			fetch: func(c *upstream.Client) error {
				_, err := upstream.NewGuideClient(c).GetGuideItem(context.Background(), itemID)
				return err
			},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if s, ok := tc.body.(string); ok {
					_, _ = w.Write([]byte(s))
					return
				}
				_ = json.NewEncoder(w).Encode(tc.body)
			}))
			defer ts.Close()

			ue := asUpstream(t, tc.fetch(newClient(t, ts.URL, upstream.Options{})))
			if ue.Status != http.StatusBadGateway {
				t.Fatalf("expected 502, got %d (%s)", ue.Status, ue.Message)
			}
		})
	}
}

func TestRestaurantClient_Valid(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(restaurantJSON())
	}))
	defer ts.Close()

	rest, err := upstream.NewRestaurantClient(newClient(t, ts.URL, upstream.Options{})).
		GetRestaurant(context.Background(), restaurantID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rest.Name != "Sample Restaurant" || rest.Branch != nil || len(rest.WorkingHours) != 1 {
		t.Fatalf("unexpected restaurant: %+v", rest)
	}
}

func TestClient_UnlimitedByDefault(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":           strings.TrimPrefix(r.URL.Path, "/guide-items/"),
			"restaurantId": restaurantID,
		})
	}))
	defer ts.Close()

	gc := upstream.NewGuideClient(newClient(t, ts.URL, upstream.Options{}))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	const n = 150
	errs := make(chan error, n)
	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := gc.GetGuideItem(ctx, itemID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("%d concurrent calls took %s; expected no client-side throttling", n, elapsed)
	}
}

func TestClient_ConfiguredRateLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]string{})
	}))
	defer ts.Close()

	gc := upstream.NewGuideClient(newClient(t, ts.URL, upstream.Options{RPS: 1}))
	if _, err := gc.ListGuideIDs(context.Background()); err != nil {
		t.Fatalf("first call: %v", err)
	}

	// the bucket is empty for the next second
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := gc.ListGuideIDs(ctx); err == nil {
		t.Fatalf("expected the limiter to refuse within the deadline")
	}
}
