package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/application/ports"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/domain"
)

var _ ports.BannerSource = (*DiscordLookupClient)(nil)

// DiscordLookupClient resolves profile banners from a Discord user lookup service.
type DiscordLookupClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewDiscordLookupClient creates a new DiscordLookupClient.
func NewDiscordLookupClient(baseURL string, timeout time.Duration) *DiscordLookupClient {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &DiscordLookupClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type lookupUser struct {
	ID     string          `json:"id"`
	Banner json.RawMessage `json:"banner"`
}

type lookupBanner struct {
	ID   string `json:"id"`
	Link string `json:"link"`
}

// ResolveBanner returns the user's banner URL, or an empty string if none is set.
// The service reports the banner either as an object with a ready link or as a bare
// image hash, in which case the CDN URL is derived from the hash.
func (c *DiscordLookupClient) ResolveBanner(
	ctx context.Context,
	userID snowflake.ID,
) (string, error) {
	url := c.baseURL + "/v1/user/" + userID.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrEnrichment, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrEnrichment, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: lookup http %d", domain.ErrEnrichment, resp.StatusCode)
	}

	var user lookupUser
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&user); err != nil {
		return "", fmt.Errorf("%w: malformed response: %w", domain.ErrEnrichment, err)
	}

	return bannerURL(userID, user.Banner)
}

func bannerURL(userID snowflake.ID, raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var hash string
	if err := json.Unmarshal(raw, &hash); err == nil {
		return hashBannerURL(userID, hash), nil
	}

	var banner lookupBanner
	if err := json.Unmarshal(raw, &banner); err != nil {
		return "", fmt.Errorf("%w: unexpected banner field: %w", domain.ErrEnrichment, err)
	}
	if banner.Link != "" {
		return banner.Link, nil
	}
	return hashBannerURL(userID, banner.ID), nil
}

// hashBannerURL builds the CDN URL for a banner hash. Animated banners
// ("a_" prefix) resolve to a GIF.
func hashBannerURL(userID snowflake.ID, hash string) string {
	if hash == "" {
		return ""
	}
	user := &discordgo.User{ID: userID.String(), Banner: hash}
	return user.BannerURL("")
}
