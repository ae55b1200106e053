// Package weather wraps the open-meteo forecast API.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// hPa to mmHg.
const mmHgPerHPa = 0.75006

var ErrNoHourlyData = errors.New("forecast response has no hourly data")

// Observation is a single converted reading: temperature in °C, wind speed
// in km/h, pressure in mmHg, humidity in percent.
type Observation struct {
	Temperature   float64
	Humidity      float64
	Pressure      float64
	WindDirection string
	WindSpeed     float64
}

type forecastResponse struct {
	CurrentWeather struct {
		Temperature   float64 `json:"temperature"`
		WindSpeed     float64 `json:"windspeed"`
		WindDirection float64 `json:"winddirection"`
	} `json:"current_weather"`
	Hourly struct {
		SurfacePressure    []float64 `json:"surface_pressure"`
		RelativeHumidity2M []float64 `json:"relativehumidity_2m"`
	} `json:"hourly"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Current fetches the current weather for the given coordinates.
func (c *Client) Current(ctx context.Context, lat, lon float64) (Observation, error) {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("current_weather", "true")
	query.Set("hourly", "surface_pressure,relativehumidity_2m")

	reqURL := c.baseURL + "/v1/forecast?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Observation{}, fmt.Errorf("http.NewRequestWithContext -> %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Observation{}, fmt.Errorf("c.httpClient.Do -> %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Observation{}, fmt.Errorf("forecast API returned %v", resp.Status)
	}

	var forecast forecastResponse
	if err = json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return Observation{}, fmt.Errorf("json.Decode -> %w", err)
	}

	if len(forecast.Hourly.SurfacePressure) == 0 || len(forecast.Hourly.RelativeHumidity2M) == 0 {
		return Observation{}, ErrNoHourlyData
	}

	return Observation{
		Temperature:   forecast.CurrentWeather.Temperature,
		Humidity:      forecast.Hourly.RelativeHumidity2M[0],
		Pressure:      math.Round(forecast.Hourly.SurfacePressure[0]*mmHgPerHPa*10) / 10,
		WindDirection: strconv.FormatFloat(forecast.CurrentWeather.WindDirection, 'f', -1, 64),
		WindSpeed:     forecast.CurrentWeather.WindSpeed,
	}, nil
}
