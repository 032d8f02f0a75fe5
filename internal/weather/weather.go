// Package weather fetches current conditions from OpenWeatherMap and the
// latest published watchface version.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"
)

// DefaultBaseURL is the OpenWeatherMap current-weather endpoint.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

const (
	defaultHTTPTimeout = 15 * time.Second
	maxBodySize        = 1 << 20
)

// ErrNoConditions is returned when the response has no weather entry.
var ErrNoConditions = errors.New("weather: response has no conditions")

// Report is one observation, already shaped for the watch.
type Report struct {
	Location    string
	Conditions  string
	Temperature int // whole degrees Celsius
}

type Config struct {
	BaseURL     string
	APIKey      string
	HTTPTimeout time.Duration
}

// Client talks to the OpenWeatherMap API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: cfg.HTTPTimeout}}
}

type currentResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"` // Kelvin
	} `json:"main"`
}

// Current fetches the weather at lat/lon.
func (c *Client) Current(ctx context.Context, lat, lon float64) (Report, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	if c.cfg.APIKey != "" {
		q.Set("appid", c.cfg.APIKey)
	}

	var resp currentResponse
	if err := getJSON(ctx, c.httpClient, c.cfg.BaseURL+"?"+q.Encode(), &resp); err != nil {
		return Report{}, err
	}
	if len(resp.Weather) == 0 {
		return Report{}, ErrNoConditions
	}
	return Report{
		Location:    resp.Name,
		Conditions:  capitalize(resp.Weather[0].Description),
		Temperature: kelvinToCelsius(resp.Main.Temp),
	}, nil
}

// kelvinToCelsius rounds half up, so -2.5 becomes -2.
func kelvinToCelsius(k float64) int {
	return int(math.Floor(k - 273.15 + 0.5))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func getJSON(ctx context.Context, client *http.Client, rawURL string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("weather: build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("weather: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("weather: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather: %s: %s", resp.Status, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("weather: decode: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
