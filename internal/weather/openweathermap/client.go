package openweathermap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/namefreezers/weather-etl/internal/config"
	"github.com/namefreezers/weather-etl/internal/weather/types"
)

// Client queries the OpenWeatherMap current-weather endpoint in metric units.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a Client from cfg. An empty API key is accepted; the API
// answers such requests with 401, which the caller handles per city.
func NewClient(cfg *config.Config) *Client {
	httpClient := http.DefaultClient
	if cfg.HTTPTimeout > 0 {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.WeatherAPIKey,
		httpClient: httpClient,
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) requestURL(city string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchCurrent implements weather.Fetcher.
func (c *Client) FetchCurrent(ctx context.Context, city string) (types.RawRecord, error) {
	rawURL, err := c.requestURL(city)
	if err != nil {
		return types.RawRecord{}, fmt.Errorf("openweathermap: invalid base URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return types.RawRecord{}, fmt.Errorf("openweathermap: failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.RawRecord{}, fmt.Errorf("openweathermap: HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return types.RawRecord{}, &StatusError{Code: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.RawRecord{}, fmt.Errorf("openweathermap: failed to read body: %w", err)
	}

	// json.Unmarshal rejects anything after the top-level object.
	var body types.RawRecord
	if err := json.Unmarshal(data, &body); err != nil {
		return types.RawRecord{}, fmt.Errorf("openweathermap: JSON decode error: %w", err)
	}
	return body, nil
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openweathermap: unexpected status %d %s", e.Code, http.StatusText(e.Code))
}
