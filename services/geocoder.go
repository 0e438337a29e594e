package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"civiclens-be/logger"
)

const geocodeCacheTTL = 7 * 24 * time.Hour

// Geocoder turns coordinates into a display address through a Nominatim endpoint.
// Results are cached in Redis when a client is given.
type Geocoder struct {
	baseURL    string
	httpClient *http.Client
	cache      *redis.Client
}

func NewGeocoder(baseURL string, cache *redis.Client) *Geocoder {
	return &Geocoder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cache,
	}
}

// FallbackAddress is used when no address can be resolved.
func FallbackAddress(lat, lng float64) string {
	return fmt.Sprintf("Near lat: %.4f, lng: %.4f", lat, lng)
}

// Reverse never fails; lookup problems yield FallbackAddress.
func (g *Geocoder) Reverse(ctx context.Context, lat, lng float64) string {
	key := fmt.Sprintf("geocode:%.4f:%.4f", lat, lng)
	if g.cache != nil {
		if cached, err := g.cache.Get(ctx, key).Result(); err == nil && cached != "" {
			return cached
		}
	}

	address, err := g.lookup(ctx, lat, lng)
	if err != nil {
		logger.Log.Warnf("Reverse geocoding failed: %v", err)
		return FallbackAddress(lat, lng)
	}
	if address == "" {
		return FallbackAddress(lat, lng)
	}

	if g.cache != nil {
		if err := g.cache.Set(ctx, key, address, geocodeCacheTTL).Err(); err != nil {
			logger.Log.Debugf("Geocode cache write failed: %v", err)
		}
	}
	return address
}

func (g *Geocoder) lookup(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "CivicLens/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoder returned %d", resp.StatusCode)
	}

	var body struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode geocoder response: %w", err)
	}
	return body.DisplayName, nil
}
