package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"surveyhub/internal/logger"
	. "surveyhub/internal/models"
)

const (
	geocodeTimeout    = 10 * time.Second
	geocodeMaxRetries = 3
	geocodeRetryDelay = 500 * time.Millisecond
)

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Geocoder resolves a structured address to coordinates through an external
// geocoding service. Only timeout-classified failures are retried.
type Geocoder struct {
	baseURL string
	apiKey  string
	client  *http.Client
	sleep   func(time.Duration)
	log     logger.Logger
}

func NewGeocoder(baseURL, apiKey string) *Geocoder {
	return &Geocoder{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: geocodeTimeout},
		sleep:   time.Sleep,
		log:     logger.New("geo"),
	}
}

type geocodeResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode returns nil without calling the service when every address
// component is empty, and nil when the service cannot resolve the address.
func (g *Geocoder) Geocode(ctx context.Context, fields GeoLocationFields) (*Coordinates, error) {
	log := g.log.Function("Geocode")

	address := BuildAddressString(fields)
	if address == "" {
		return nil, nil
	}

	var lastErr error
	for attempt := 0; attempt < geocodeMaxRetries; attempt++ {
		if attempt > 0 {
			g.sleep(geocodeRetryDelay)
		}

		coords, err := g.lookup(ctx, address)
		if err == nil {
			return coords, nil
		}

		if !isTimeout(err) {
			return nil, log.Err("geocoding failed", err, "address", address)
		}

		lastErr = err
		log.Warn("geocoding timed out, retrying", "address", address, "attempt", attempt+1)
	}

	return nil, log.Err("geocoding timed out after retries", lastErr, "address", address)
}

func (g *Geocoder) lookup(ctx context.Context, address string) (*Coordinates, error) {
	reqCtx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	query := url.Values{}
	query.Set("q", address)
	if g.apiKey != "" {
		query.Set("api_key", g.apiKey)
	}

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodGet, g.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding service error (%d): %s", resp.StatusCode, string(body))
	}

	var results []geocodeResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", results[0].Lon, err)
	}

	return &Coordinates{Latitude: lat, Longitude: lon}, nil
}

// BuildAddressString concatenates the non-empty address components in fixed
// order: line1, line2, city-or-town, province, country, postal code.
func BuildAddressString(fields GeoLocationFields) string {
	cityOrTown := fields.City
	if cityOrTown == "" {
		cityOrTown = fields.Town
	}

	parts := []string{
		fields.AddressLine1,
		fields.AddressLine2,
		cityOrTown,
		fields.Province,
		fields.Country,
		fields.PostalCode,
	}

	nonEmpty := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			nonEmpty = append(nonEmpty, strings.TrimSpace(part))
		}
	}

	return strings.Join(nonEmpty, ", ")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
