package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/thushan/redis-watcher/internal/core/domain"
	"github.com/thushan/redis-watcher/internal/util"
)

const (
	DefaultSocket         = "/var/run/docker.sock"
	DefaultAPIURL         = "http://localhost"
	DefaultRequestTimeout = 10 * time.Second

	contentTypeJSON = "application/json"
	maxBodyBytes    = 8 << 20
	maxErrorDetail  = 256
)

type ClientConfig struct {
	// Socket is the Docker engine's unix socket, empty to use APIURL over TCP
	Socket            string
	APIURL            string
	RequestTimeout    time.Duration
	RequestsPerSecond float64
}

// SwarmClient speaks the two calls of the Docker Swarm service API a forced
// restart needs: inspect a service and update it at a known version.
type SwarmClient struct {
	http    *http.Client
	limiter *rate.Limiter
	baseURL string
}

func NewSwarmClient(cfg ClientConfig) *SwarmClient {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	baseURL := cfg.APIURL
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}

	transport := &http.Transport{
		MaxIdleConns:        4,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: timeout,
	}
	if cfg.Socket != "" {
		socket := cfg.Socket
		transport.DialContext = func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socket)
		}
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &SwarmClient{
		http:    &http.Client{Transport: transport, Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Fetch inspects a service and returns its spec with the version index that
// must be presented on the following update
func (c *SwarmClient) Fetch(ctx context.Context, id string) (domain.WorkloadVersion, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.WorkloadVersion{}, domain.NewFetchError(id, 0, err)
	}

	target, err := c.serviceURL(id)
	if err != nil {
		return domain.WorkloadVersion{}, domain.NewFetchError(id, 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return domain.WorkloadVersion{}, domain.NewFetchError(id, 0, err)
	}

	status, body, err := c.do(req)
	if err != nil {
		return domain.WorkloadVersion{}, domain.NewFetchError(id, 0, err)
	}
	if !isSuccess(status) {
		return domain.WorkloadVersion{}, domain.NewFetchError(id, status, apiError(body))
	}

	version, err := parseServiceVersion(body)
	if err != nil {
		return domain.WorkloadVersion{}, domain.NewFetchError(id, status, err)
	}
	return version, nil
}

// Update submits spec for the service guarded by index. The engine rejects
// the update if the service has moved on since index was read.
func (c *SwarmClient) Update(ctx context.Context, id string, index uint64, spec domain.WorkloadSpec) error {
	service, err := c.serviceURL(id)
	if err != nil {
		return domain.NewUpdateError(id, 0, err)
	}

	payload, err := encodeSpec(spec)
	if err != nil {
		return domain.NewUpdateError(id, 0, fmt.Errorf("unable to encode spec: %w", err))
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.NewUpdateError(id, 0, err)
	}

	target := service + "/update?version=" + strconv.FormatUint(index, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return domain.NewUpdateError(id, 0, err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	status, body, err := c.do(req)
	if err != nil {
		return domain.NewUpdateError(id, 0, err)
	}
	if !isSuccess(status) {
		return domain.NewUpdateError(id, status, apiError(body))
	}
	return nil
}

// serviceURL refuses ids that would not stay a single path segment once
// the path is cleaned
func (c *SwarmClient) serviceURL(id string) (string, error) {
	if err := domain.ValidateWorkloadID(id); err != nil {
		return "", err
	}
	return util.ResolveURLPath(c.baseURL, "/services/"+id), nil
}

func (c *SwarmClient) do(req *http.Request) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

var (
	errMalformedBody = errors.New("response is not valid JSON")
	errMissingIndex  = errors.New("response has no integer Version.Index")
	errMissingSpec   = errors.New("response has no Spec object")
)

func parseServiceVersion(body []byte) (domain.WorkloadVersion, error) {
	if !gjson.ValidBytes(body) {
		return domain.WorkloadVersion{}, errMalformedBody
	}

	index := gjson.GetBytes(body, "Version.Index")
	if index.Type != gjson.Number || index.Num < 0 || index.Num != float64(index.Uint()) {
		return domain.WorkloadVersion{}, errMissingIndex
	}

	rawSpec := gjson.GetBytes(body, "Spec")
	if !rawSpec.IsObject() {
		return domain.WorkloadVersion{}, errMissingSpec
	}

	spec, err := decodeSpec([]byte(rawSpec.Raw))
	if err != nil {
		return domain.WorkloadVersion{}, fmt.Errorf("decoding Spec: %w", err)
	}
	return domain.WorkloadVersion{Index: index.Uint(), Spec: spec}, nil
}

// apiError pulls the engine's {"message": "..."} out of an error response
func apiError(body []byte) error {
	if msg := gjson.GetBytes(body, "message"); msg.Exists() && msg.String() != "" {
		return errors.New(msg.String())
	}
	detail := strings.TrimSpace(string(body))
	if len(detail) > maxErrorDetail {
		detail = detail[:maxErrorDetail]
	}
	if detail == "" {
		detail = "empty response"
	}
	return errors.New(detail)
}

func isSuccess(status int) bool {
	return status >= 200 && status <= 299
}
