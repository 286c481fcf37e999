package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	nominatimURL = "https://nominatim.openstreetmap.org/search"
	openMeteoURL = "https://api.open-meteo.com/v1/forecast"
)

// NewWeatherTool creates the weather tool: Nominatim geocoding followed by an
// Open-Meteo forecast, formatted as plain text for the model to interpret.
func NewWeatherTool() *Tool {
	client := &http.Client{Timeout: 15 * time.Second}
	return &Tool{
		Name:        "weather",
		Description: "Clima e previsão do tempo para uma cidade",
		Invoke: func(ctx context.Context, args string) (string, error) {
			return fetchWeather(ctx, client, args)
		},
	}
}

func fetchWeather(ctx context.Context, client *http.Client, cityQuery string) (string, error) {
	lat, lon, displayName, err := geocode(ctx, client, cityQuery)
	if err != nil {
		return "", err
	}
	if displayName == "" {
		return fmt.Sprintf("Não encontrei a localização '%s'.", cityQuery), nil
	}

	params := url.Values{}
	params.Set("latitude", lat)
	params.Set("longitude", lon)
	params.Set("current", "temperature_2m,apparent_temperature,weather_code,wind_speed_10m")
	params.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_probability_max")
	params.Set("timezone", "auto")

	req, err := http.NewRequestWithContext(ctx, "GET", openMeteoURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "Erro ao obter dados meteorológicos.", nil
	}

	var data struct {
		Current struct {
			Temperature float64 `json:"temperature_2m"`
			Apparent    float64 `json:"apparent_temperature"`
			WindSpeed   float64 `json:"wind_speed_10m"`
		} `json:"current"`
		Daily struct {
			TempMax    []float64 `json:"temperature_2m_max"`
			TempMin    []float64 `json:"temperature_2m_min"`
			RainChance []float64 `json:"precipitation_probability_max"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("failed to parse weather response: %w", err)
	}
	if len(data.Daily.TempMax) == 0 || len(data.Daily.TempMin) == 0 || len(data.Daily.RainChance) == 0 {
		return "Erro ao obter dados meteorológicos.", nil
	}

	return fmt.Sprintf(
		"Local: %s\nAgora: %.1f°C (Sensação: %.1f°C)\nVento: %.1f km/h\nPrevisão Hoje (Max/Min): %.1f°C / %.1f°C\nChuva Hoje (%%): %.0f",
		displayName,
		data.Current.Temperature, data.Current.Apparent, data.Current.WindSpeed,
		data.Daily.TempMax[0], data.Daily.TempMin[0], data.Daily.RainChance[0],
	), nil
}

func geocode(ctx context.Context, client *http.Client, query string) (lat, lon, displayName string, err error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, "GET", nominatimURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to create request: %w", err)
	}
	// OpenStreetMap requires an identifying User-Agent
	req.Header.Set("User-Agent", "SamBot/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return "", "", "", fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", "", "", fmt.Errorf("geocoding status %d: %s", resp.StatusCode, string(body))
	}

	var results []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", "", "", fmt.Errorf("failed to parse geocoding response: %w", err)
	}
	if len(results) == 0 {
		return "", "", "", nil
	}
	return results[0].Lat, results[0].Lon, results[0].DisplayName, nil
}
