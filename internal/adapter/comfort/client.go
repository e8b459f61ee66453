// Package comfort is an HTTP client for a thermal comfort service that
// evaluates the SolarCal mean radiant temperature and UTCI models.
package comfort

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/openfield-comfort/internal/domain"
	"github.com/couchcryptid/openfield-comfort/internal/observability"
)

// Endpoint paths, relative to the base URL.
const (
	SolarCalPath = "/v1/solarcal/horizontal"
	UTCIPath     = "/v1/utci"
)

const maxErrorBody = 4 << 10

// Client implements domain.RadiantModel and domain.ComfortModel over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a comfort service client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		metrics:    metrics,
		logger:     logger,
	}
}

// MeanRadiantTemperature evaluates the horizontal SolarCal model.
func (c *Client) MeanRadiantTemperature(ctx context.Context, in domain.SolarCalInput) (domain.Series, error) {
	req := solarCalRequest{
		Latitude:            in.Location.Latitude,
		Longitude:           in.Location.Longitude,
		TimeZone:            in.Location.TimeZone,
		Elevation:           in.Location.Elevation,
		Start:               in.DirectHorizontal.Period.Start,
		DirectHorizontal:    in.DirectHorizontal.Values,
		DiffuseHorizontal:   in.DiffuseHorizontal.Values,
		LongwaveMRT:         in.LongwaveMRT.Values,
		FractionBodyExposed: in.FractionBodyExposed,
		FloorReflectance:    in.FloorReflectance,
	}
	values, err := c.doRequest(ctx, SolarCalPath, "solarcal", req)
	if err != nil {
		return domain.Series{}, err
	}
	return domain.Series{
		Name:   "Mean Radiant Temperature",
		Unit:   domain.UnitCelsius,
		Period: in.LongwaveMRT.Period,
		Values: values,
	}, nil
}

// UTCI evaluates the Universal Thermal Climate Index.
func (c *Client) UTCI(ctx context.Context, in domain.UTCIInput) (domain.Series, error) {
	req := utciRequest{
		AirTemperature:         in.AirTemperature.Values,
		RelativeHumidity:       in.RelativeHumidity.Values,
		MeanRadiantTemperature: in.MeanRadiantTemperature.Values,
		WindSpeed:              in.WindSpeed.Values,
	}
	values, err := c.doRequest(ctx, UTCIPath, "utci", req)
	if err != nil {
		return domain.Series{}, err
	}
	return domain.Series{
		Name:   "Universal Thermal Climate Index",
		Unit:   domain.UnitCelsius,
		Period: in.AirTemperature.Period,
		Values: values,
	}, nil
}

// CheckReadiness reports whether the service answers its health endpoint.
func (c *Client) CheckReadiness(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("comfort service health: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("comfort service health: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, path, model string, payload any) ([]float64, error) {
	start := time.Now()
	values, err := c.post(ctx, path, payload)
	c.metrics.ComfortAPIDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ComfortRequests.WithLabelValues(model, "error").Inc()
		c.logger.Warn("comfort request failed", "model", model, "error", err)
		return nil, fmt.Errorf("%s request: %w", model, err)
	}
	c.metrics.ComfortRequests.WithLabelValues(model, "success").Inc()
	c.logger.Debug("comfort request complete", "model", model, "values", len(values), "duration", time.Since(start))
	return values, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]float64, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("comfort API error: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Values, nil
}

// Comfort service request and response types.

type solarCalRequest struct {
	Latitude            float64   `json:"latitude"`
	Longitude           float64   `json:"longitude"`
	TimeZone            float64   `json:"time_zone"`
	Elevation           float64   `json:"elevation"`
	Start               time.Time `json:"start"`
	DirectHorizontal    []float64 `json:"direct_horizontal"`
	DiffuseHorizontal   []float64 `json:"diffuse_horizontal"`
	LongwaveMRT         []float64 `json:"longwave_mrt"`
	FractionBodyExposed float64   `json:"fraction_body_exposed"`
	FloorReflectance    float64   `json:"floor_reflectance"`
}

type utciRequest struct {
	AirTemperature         []float64 `json:"air_temperature"`
	RelativeHumidity       []float64 `json:"relative_humidity"`
	MeanRadiantTemperature []float64 `json:"mean_radiant_temperature"`
	WindSpeed              []float64 `json:"wind_speed"`
}

type response struct {
	Values []float64 `json:"values"`
}
