package incidents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cragr/incident-search/internal/config"
	"github.com/cragr/incident-search/internal/models"
)

// EndpointPath is the incident-listing path relative to the backend URL.
const EndpointPath = "/incidents"

// maxErrorBody caps how much of an error response is kept in the message.
const maxErrorBody = 512

const tracerName = "github.com/cragr/incident-search/internal/incidents"

// Client handles communication with the incident service.
type Client struct {
	baseURL      string
	endpointPath string
	httpClient   *http.Client
	tracer       trace.Tracer
	logger       *slog.Logger
}

// NewClient creates a new incident service client. A zero HTTPTimeout leaves
// the transport without a timeout.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BackendURL, "/"),
		endpointPath: EndpointPath,
		httpClient:   &http.Client{Timeout: cfg.HTTPTimeout},
		tracer:       otel.Tracer(tracerName),
		logger:       logger,
	}
}

// SearchIncidents issues exactly one GET for the given filter snapshot and
// returns the decoded page. Every failure is a *QueryError.
func (c *Client) SearchIncidents(ctx context.Context, filters models.SearchFilters) (*models.ResultPage, error) {
	params := BuildQuery(filters)
	endpoint := c.baseURL + c.endpointPath
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	ctx, span := c.tracer.Start(ctx, "incidents.search",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Int("incidents.page", filters.Page),
			attribute.Int("incidents.size", filters.Size),
			attribute.String("incidents.sort", filters.Sort),
			attribute.String("incidents.direction", string(filters.Direction)),
		),
	)
	defer span.End()

	c.logger.Debug("searching incidents",
		"endpoint", endpoint,
	)

	page, err := c.do(ctx, endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if status := StatusCode(err); status != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", status))
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("http.response.status_code", http.StatusOK),
		attribute.Int("incidents.items", len(page.Items)),
	)
	return page, nil
}

func (c *Client) do(ctx context.Context, endpoint string) (*models.ResultPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &QueryError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &QueryError{Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	if err := c.checkResponse(resp); err != nil {
		return nil, err
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &QueryError{Err: fmt.Errorf("failed to read response: %w", err), StatusCode: resp.StatusCode}
	}

	var page models.ResultPage
	if err := json.Unmarshal(respBody, &page); err != nil {
		return nil, &QueryError{Err: fmt.Errorf("failed to unmarshal response: %w", err), StatusCode: resp.StatusCode}
	}
	if page.Items == nil {
		page.Items = []models.Incident{}
	}

	return &page, nil
}

// BuildQuery translates a filter snapshot into query parameters. Text
// filters are trimmed and sent only when non-empty; page and size are
// always sent; sort and direction are sent when set.
func BuildQuery(filters models.SearchFilters) url.Values {
	params := url.Values{}

	setTrimmed(params, "title", filters.Title)
	setTrimmed(params, "description", filters.Description)
	setTrimmed(params, "severity", filters.Severity)
	setTrimmed(params, "owner", filters.Owner)

	params.Set("page", strconv.Itoa(filters.Page))
	params.Set("size", strconv.Itoa(filters.Size))

	setTrimmed(params, "sort", filters.Sort)
	setTrimmed(params, "direction", string(filters.Direction))

	return params
}

func setTrimmed(params url.Values, key, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		params.Set(key, trimmed)
	}
}

// setHeaders sets common headers for incident service requests.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
}

// checkResponse validates the HTTP response from the incident service.
func (c *Client) checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	message := strings.TrimSpace(string(body))
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	level := slog.LevelWarn
	if IsServerError(resp.StatusCode) {
		level = slog.LevelError
	}
	c.logger.Log(context.Background(), level, "incident service error",
		"status_code", resp.StatusCode,
		"response", message,
	)

	return &QueryError{
		Err:        fmt.Errorf("incident service returned status %d: %s", resp.StatusCode, message),
		StatusCode: resp.StatusCode,
	}
}
