package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/poiesic/filmdex/core"
)

// DefaultBaseURL is the public OMDb API endpoint.
const DefaultBaseURL = "http://www.omdbapi.com/"

const defaultTimeout = 10 * time.Second

// keyYearSuffix matches a canonical key's trailing parenthesized year.
var keyYearSuffix = regexp.MustCompile(`^(.*?)\s*\((\d{4})\)$`)

// OMDbResolver implements Resolver against the OMDb HTTP API.
type OMDbResolver struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// OMDbOption is a functional option for configuring an OMDbResolver.
type OMDbOption func(*OMDbResolver)

// WithBaseURL overrides the OMDb endpoint, mainly for tests.
func WithBaseURL(baseURL string) OMDbOption {
	return func(r *OMDbResolver) {
		r.baseURL = baseURL
	}
}

// WithHTTPClient overrides the HTTP client used for lookups. The client
// should carry a bounded timeout; the resolver never waits indefinitely.
func WithHTTPClient(client *http.Client) OMDbOption {
	return func(r *OMDbResolver) {
		r.client = client
	}
}

// WithLogger sets the logger used by the resolver.
func WithLogger(logger *slog.Logger) OMDbOption {
	return func(r *OMDbResolver) {
		r.logger = logger.With("component", "omdb-resolver")
	}
}

// NewOMDbResolver creates a resolver backed by the OMDb API.
func NewOMDbResolver(apiKey string, opts ...OMDbOption) *OMDbResolver {
	r := &OMDbResolver{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  slog.Default().With("component", "omdb-resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the caption when one exists, otherwise queries OMDb by
// canonical key. A negative service response yields the not-available
// sentinel; a transport failure yields the lookup-failed sentinel.
func (r *OMDbResolver) Resolve(ctx context.Context, caption, canonicalKey string) string {
	if caption != "" {
		return caption
	}
	return r.lookup(ctx, canonicalKey)
}

// lookupResponse is the subset of the OMDb payload the resolver reads.
type lookupResponse struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Genre    string `json:"Genre"`
	Director string `json:"Director"`
	Plot     string `json:"Plot"`
}

func (r *OMDbResolver) lookup(ctx context.Context, canonicalKey string) string {
	title, year := splitKey(canonicalKey)

	params := url.Values{}
	params.Set("t", title)
	if year != "" {
		params.Set("y", year)
	}
	params.Set("apikey", r.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		r.logger.Error("building metadata request failed", "key", canonicalKey, "err", err)
		return core.DescriptionLookupFailed
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("metadata lookup failed", "key", canonicalKey, "err", err)
		return core.DescriptionLookupFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Error("metadata lookup returned bad status", "key", canonicalKey, "status", resp.StatusCode)
		return core.DescriptionLookupFailed
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		r.logger.Error("decoding metadata response failed", "key", canonicalKey, "err", err)
		return core.DescriptionLookupFailed
	}

	if payload.Response != "True" {
		r.logger.Warn("metadata service has no record", "key", canonicalKey, "reason", payload.Error)
		return core.DescriptionNotAvailable
	}

	return formatDetails(payload)
}

// formatDetails renders the fixed five-field summary stored as a description.
func formatDetails(payload lookupResponse) string {
	return fmt.Sprintf("Title: %s\nYear: %s\nGenre: %s\nDirector: %s\nPlot: %s",
		orPlaceholder(payload.Title),
		orPlaceholder(payload.Year),
		orPlaceholder(payload.Genre),
		orPlaceholder(payload.Director),
		orPlaceholder(payload.Plot))
}

func orPlaceholder(field string) string {
	if field == "" {
		return "N/A"
	}
	return field
}

// splitKey separates a canonical key into its title body and optional year
// so the two can be passed as distinct query parameters.
func splitKey(canonicalKey string) (title, year string) {
	if m := keyYearSuffix.FindStringSubmatch(canonicalKey); m != nil {
		return m[1], m[2]
	}
	return canonicalKey, ""
}
