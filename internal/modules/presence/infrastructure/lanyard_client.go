package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/application/ports"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/domain"
)

// DefaultHTTPTimeout bounds each REST lookup.
const DefaultHTTPTimeout = 10 * time.Second

const maxResponseBytes = 1 << 20

var _ ports.SnapshotSource = (*LanyardClient)(nil)

// LanyardClient fetches presence snapshots from the Lanyard REST API.
type LanyardClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewLanyardClient creates a new LanyardClient.
func NewLanyardClient(baseURL string, timeout time.Duration) *LanyardClient {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &LanyardClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type lanyardEnvelope struct {
	Success bool             `json:"success"`
	Data    *lanyardPresence `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FetchPresence returns the user's current presence.
func (c *LanyardClient) FetchPresence(
	ctx context.Context,
	userID snowflake.ID,
) (domain.Presence, error) {
	const op = "fetch presence"

	url := c.baseURL + "/v1/users/" + userID.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Presence{}, &domain.UpstreamError{Op: op, Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Presence{}, &domain.UpstreamError{Op: op, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.Presence{}, &domain.UpstreamError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("failed to read response: %v", err),
		}
	}

	var envelope lanyardEnvelope
	decodeErr := json.Unmarshal(body, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := http.StatusText(resp.StatusCode)
		if decodeErr == nil && envelope.Error != nil && envelope.Error.Message != "" {
			message = envelope.Error.Message
		}
		return domain.Presence{}, &domain.UpstreamError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    message,
		}
	}

	if decodeErr != nil {
		return domain.Presence{}, &domain.UpstreamError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("malformed response: %v", decodeErr),
		}
	}
	if !envelope.Success || envelope.Data == nil {
		message := "response reported failure"
		if envelope.Error != nil && envelope.Error.Message != "" {
			message = envelope.Error.Message
		}
		return domain.Presence{}, &domain.UpstreamError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    message,
		}
	}

	return envelope.Data.toDomain(), nil
}
