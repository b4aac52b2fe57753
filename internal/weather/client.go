// Package weather fetches current conditions from OpenWeatherMap.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/JonnyWalker81/hydration/backend/internal/models"
)

// ErrNoCity is returned when a lookup is attempted without a city
var ErrNoCity = errors.New("city is required")

// Provider returns the current weather for a city
type Provider interface {
	Current(ctx context.Context, city string) (models.EnvironmentSnapshot, error)
}

// Client calls the OpenWeatherMap current weather API in metric units.
// Results are cached per city for cacheTTL.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client

	cacheTTL time.Duration
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]cachedSnapshot
}

type cachedSnapshot struct {
	snapshot models.EnvironmentSnapshot
	expires  time.Time
}

type currentResponse struct {
	Main struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
}

// NewClient creates a weather client
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
		cacheTTL:   10 * time.Minute,
		now:        time.Now,
		cache:      make(map[string]cachedSnapshot),
	}
}

// Current returns temperature in Celsius and relative humidity for city
func (c *Client) Current(ctx context.Context, city string) (models.EnvironmentSnapshot, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return models.EnvironmentSnapshot{}, ErrNoCity
	}
	key := strings.ToLower(city)

	c.mu.Lock()
	if cached, ok := c.cache[key]; ok && c.now().Before(cached.expires) {
		c.mu.Unlock()
		return cached.snapshot, nil
	}
	c.mu.Unlock()

	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", c.APIKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/weather?"+params.Encode(), nil)
	if err != nil {
		return models.EnvironmentSnapshot{}, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return models.EnvironmentSnapshot{}, fmt.Errorf("failed to fetch weather: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.EnvironmentSnapshot{}, fmt.Errorf("failed to read weather response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return models.EnvironmentSnapshot{}, fmt.Errorf("weather API error (status %d): %s", resp.StatusCode, string(body))
	}

	var decoded currentResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return models.EnvironmentSnapshot{}, fmt.Errorf("failed to decode weather response: %w", err)
	}

	snapshot := models.EnvironmentSnapshot{
		TemperatureC: decoded.Main.Temp,
		Humidity:     decoded.Main.Humidity,
	}

	c.mu.Lock()
	c.cache[key] = cachedSnapshot{snapshot: snapshot, expires: c.now().Add(c.cacheTTL)}
	c.mu.Unlock()

	return snapshot, nil
}
