package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	. "surveyhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeocoder(serverURL string) *Geocoder {
	g := NewGeocoder(serverURL, "")
	g.sleep = func(time.Duration) {}
	return g
}

func TestBuildAddressString(t *testing.T) {
	tests := []struct {
		name     string
		fields   GeoLocationFields
		expected string
	}{
		{
			name: "all components",
			fields: GeoLocationFields{
				AddressLine1: "1 Main St",
				AddressLine2: "Suite 4",
				City:         "Springfield",
				Province:     "IL",
				Country:      "USA",
				PostalCode:   "62701",
			},
			expected: "1 Main St, Suite 4, Springfield, IL, USA, 62701",
		},
		{
			name: "town used when city empty",
			fields: GeoLocationFields{
				Town:    "Smallville",
				Country: "USA",
			},
			expected: "Smallville, USA",
		},
		{
			name: "empty components skipped",
			fields: GeoLocationFields{
				AddressLine1: "1 Main St",
				Country:      "USA",
			},
			expected: "1 Main St, USA",
		},
		{
			name:     "all empty",
			fields:   GeoLocationFields{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildAddressString(tt.fields))
		})
	}
}

func TestGeocode_EmptyAddressSkipsService(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	g := newTestGeocoder(server.URL)
	coords, err := g.Geocode(context.Background(), GeoLocationFields{})

	assert.NoError(t, err)
	assert.Nil(t, coords)
	assert.Equal(t, int32(0), hits.Load(), "external service must not be called")
}

func TestGeocode_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"45.5017","lon":"-73.5673"}]`))
	}))
	defer server.Close()

	g := newTestGeocoder(server.URL)
	coords, err := g.Geocode(context.Background(), GeoLocationFields{City: "Montreal", Country: "Canada"})

	require.NoError(t, err)
	require.NotNil(t, coords)
	assert.InDelta(t, 45.5017, coords.Latitude, 0.0001)
	assert.InDelta(t, -73.5673, coords.Longitude, 0.0001)
}

func TestGeocode_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	g := newTestGeocoder(server.URL)
	coords, err := g.Geocode(context.Background(), GeoLocationFields{City: "Nowhereville"})

	assert.NoError(t, err)
	assert.Nil(t, coords)
}

func TestGeocode_ServiceErrorDoesNotRetry(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	g := newTestGeocoder(server.URL)
	coords, err := g.Geocode(context.Background(), GeoLocationFields{City: "Montreal"})

	assert.Error(t, err)
	assert.Nil(t, coords)
	assert.Equal(t, int32(1), hits.Load(), "non-timeout errors must not be retried")
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "dial timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// flakyTransport fails the first n round trips with a timeout, then delegates.
type flakyTransport struct {
	failures int
	attempts atomic.Int32
	next     http.RoundTripper
}

func (ft *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if int(ft.attempts.Add(1)) <= ft.failures {
		return nil, timeoutError{}
	}
	return ft.next.RoundTrip(req)
}

func TestGeocode_TimeoutRetriesThenSucceeds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"45.5017","lon":"-73.5673"}]`))
	}))
	defer server.Close()

	transport := &flakyTransport{failures: 2, next: http.DefaultTransport}
	g := newTestGeocoder(server.URL)
	g.client.Transport = transport

	coords, err := g.Geocode(context.Background(), GeoLocationFields{City: "Montreal"})

	require.NoError(t, err)
	require.NotNil(t, coords)
	assert.InDelta(t, 45.5017, coords.Latitude, 0.0001)
	assert.Equal(t, int32(3), transport.attempts.Load(), "two timeouts then a success")
}

func TestGeocode_TimeoutRetriesExhausted(t *testing.T) {
	var sleeps int
	transport := &flakyTransport{failures: geocodeMaxRetries, next: http.DefaultTransport}
	g := newTestGeocoder("http://geocode.invalid")
	g.client.Transport = transport
	g.sleep = func(time.Duration) { sleeps++ }

	coords, err := g.Geocode(context.Background(), GeoLocationFields{City: "Montreal"})

	assert.Error(t, err)
	assert.Nil(t, coords)
	assert.Equal(t, int32(geocodeMaxRetries), transport.attempts.Load(), "timeouts are retried up to the bound")
	assert.Equal(t, geocodeMaxRetries-1, sleeps, "a delay between attempts, none after the last")
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, isTimeout(context.DeadlineExceeded))
	assert.False(t, isTimeout(assert.AnError))
}
