package patroni

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"gfx.cafe/gfx/pgroute/lib/discovery"
)

// ErrUnavailable is returned when every membership endpoint is unreachable
// or returns a malformed response.
var ErrUnavailable = errors.New("discovery: no membership endpoint available")

var tracer = otel.Tracer("gfx.cafe/gfx/pgroute/lib/discovery/patroni")

// Client queries a Patroni-style membership API. Endpoints are tried
// strictly in order, one query each, first success wins. A given endpoint
// is never retried.
type Client struct {
	Config

	http *http.Client

	log *zap.Logger
}

func NewClient(config Config, log *zap.Logger) *Client {
	if config.QueryTimeout == 0 {
		config.QueryTimeout = DefaultQueryTimeout
	}
	if config.DatabasePort == 0 {
		config.DatabasePort = DefaultDatabasePort
	}
	return &Client{
		Config: config,
		http:   &http.Client{},
		log:    log,
	}
}

type memberJSON struct {
	Name string `json:"name"`
	Role string `json:"role"`

	// optional; when absent the member name is its host
	Host string `json:"host,omitempty"`
	Port uint16 `json:"port,omitempty"`
}

type membersJSON struct {
	Members []memberJSON `json:"members"`
}

// Members queries the endpoints in order and returns the member list from
// the first endpoint that answers with a well-formed response.
func (T *Client) Members(ctx context.Context) ([]discovery.Member, error) {
	ctx, span := tracer.Start(ctx, "patroni.Members")
	defer span.End()

	for _, endpoint := range T.Endpoints {
		members, err := T.query(ctx, endpoint)
		if err != nil {
			T.log.Warn("membership endpoint failed",
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
			continue
		}
		span.SetAttributes(
			attribute.String("endpoint", endpoint),
			attribute.Int("members", len(members)),
		)
		return members, nil
	}

	return nil, ErrUnavailable
}

// Discover returns the members matching want, in reported order. An empty
// result with a nil error means the service answered but no member has the
// requested role; the caller decides fallback policy.
func (T *Client) Discover(ctx context.Context, want discovery.Role) ([]discovery.Member, error) {
	members, err := T.Members(ctx)
	if err != nil {
		return nil, err
	}
	return discovery.FilterRole(members, want), nil
}

func (T *Client) query(ctx context.Context, endpoint string) ([]discovery.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, T.QueryTimeout)
	defer cancel()

	u := url.URL{
		Scheme: "http",
		Host:   endpoint,
		Path:   "/",
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := T.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var body membersJSON
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("malformed membership response: %w", err)
	}

	members := make([]discovery.Member, 0, len(body.Members))
	for _, m := range body.Members {
		member := discovery.Member{
			Name: m.Name,
			Role: discovery.Role(m.Role),
			Host: m.Host,
			Port: m.Port,
		}
		if member.Host == "" {
			member.Host = m.Name
		}
		if member.Port == 0 {
			member.Port = T.DatabasePort
		}
		members = append(members, member)
	}
	return members, nil
}

var _ discovery.Discoverer = (*Client)(nil)
