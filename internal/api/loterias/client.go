// Package loterias is the client for the public loterias-caixa results API,
// the upstream feed of historical Mega-Sena draws.
package loterias

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	platformhttp "megasena-analyzer/internal/platform/http"
	"megasena-analyzer/models"
)

// DefaultBaseURL is the public API endpoint.
const DefaultBaseURL = "https://loteriascaixa-api.herokuapp.com/api/megasena"

// Client fetches Mega-Sena results.
type Client struct {
	baseURL    string
	httpClient *platformhttp.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new loterias client.
type ClientOptions struct {
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new loterias API client.
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: options.BaseURL,
		httpClient: platformhttp.NewClient(platformhttp.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "loterias_client").Logger(),
	}
}

// drawResponse is the API payload for one contest. Dezenas arrive as
// zero-padded strings.
type drawResponse struct {
	Concurso int      `json:"concurso"`
	Data     string   `json:"data"`
	Dezenas  []string `json:"dezenas"`
}

// GetLatest fetches the most recent published draw.
func (c *Client) GetLatest(ctx context.Context) (models.Draw, error) {
	return c.fetch(ctx, c.baseURL+"/latest")
}

// GetDraw fetches one contest by sequence number.
func (c *Client) GetDraw(ctx context.Context, sequence uint) (models.Draw, error) {
	return c.fetch(ctx, fmt.Sprintf("%s/%d", c.baseURL, sequence))
}

func (c *Client) fetch(ctx context.Context, url string) (models.Draw, error) {
	c.logger.Debug().Str("url", url).Msg("Fetching draw")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.Draw{}, err
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return models.Draw{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Draw{}, fmt.Errorf("read response: %w", err)
	}

	var payload drawResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.Draw{}, fmt.Errorf("decode response: %w", err)
	}
	return payload.toDraw()
}

// toDraw validates the API payload and converts it to the domain type.
func (r drawResponse) toDraw() (models.Draw, error) {
	if r.Concurso <= 0 {
		return models.Draw{}, fmt.Errorf("%w: missing concurso", models.ErrInvalidArgument)
	}
	if len(r.Dezenas) != models.DrawSize {
		return models.Draw{}, fmt.Errorf("%w: contest %d has %d dezenas, want %d",
			models.ErrInvalidArgument, r.Concurso, len(r.Dezenas), models.DrawSize)
	}

	date, err := time.Parse("02/01/2006", r.Data)
	if err != nil {
		return models.Draw{}, fmt.Errorf("contest %d: parse date %q: %w", r.Concurso, r.Data, err)
	}

	numbers := make([]int, len(r.Dezenas))
	for i, s := range r.Dezenas {
		n, err := strconv.Atoi(s)
		if err != nil {
			return models.Draw{}, fmt.Errorf("contest %d: parse dezena %q: %w", r.Concurso, s, err)
		}
		numbers[i] = n
	}
	return models.NewDraw(uint(r.Concurso), date, numbers)
}
