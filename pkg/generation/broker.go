package generation

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/learnaistudio/course-engine/pkg/apperrors"
)

const (
	healthPath  = "/health"
	outlinePath = "/v1/course-generation-outline"
)

// generateRequest is the generation service's request body.
type generateRequest struct {
	InputText string `json:"input_text"`
}

// Transport is one way of reaching the generation service. Two independent
// implementations exist because production deployments have shown one HTTP
// stack failing where the other succeeds; both target the same endpoint and
// payload shape.
type Transport interface {
	// Name identifies the transport in diagnostics.
	Name() string
	// Probe issues the cheap liveness check against a candidate base URL.
	Probe(ctx context.Context, baseURL string) error
	// Generate issues the real generation call and returns the raw,
	// unparsed response body.
	Generate(ctx context.Context, baseURL, inputText string) (string, error)
}

// Result carries the raw response body plus which candidate and transport
// succeeded.
type Result struct {
	Body      string
	Endpoint  string
	Transport string
}

// Broker locates a reachable instance of the generation service. For each
// transport and candidate base URL it probes /health under a short timeout
// and, only on success, issues the generation request under a longer one.
// The candidate list is tried once in order; there is no backoff loop.
type Broker struct {
	endpoints      []string
	transports     []Transport
	probeTimeout   time.Duration
	requestTimeout time.Duration
	logger         *zap.Logger
}

// NewBroker creates a broker over the given candidate base URLs.
func NewBroker(endpoints []string, probeTimeout, requestTimeout time.Duration, logger *zap.Logger) *Broker {
	return &Broker{
		endpoints:      endpoints,
		transports:     []Transport{newPooledTransport(), newDirectTransport()},
		probeTimeout:   probeTimeout,
		requestTimeout: requestTimeout,
		logger:         logger.Named("broker"),
	}
}

// RequestOutline asks the first reachable candidate for a course outline and
// returns its raw response text. Returns apperrors.ErrGeneratorUnreachable
// once every transport and candidate has been exhausted; that is a
// recoverable condition, the caller falls back to synthesis.
func (b *Broker) RequestOutline(ctx context.Context, topic string) (*Result, error) {
	inputText := BuildInputText(topic)

	for _, transport := range b.transports {
		for _, endpoint := range b.endpoints {
			probeCtx, cancel := context.WithTimeout(ctx, b.probeTimeout)
			err := transport.Probe(probeCtx, endpoint)
			cancel()
			if err != nil {
				b.logger.Debug("liveness probe failed",
					zap.String("endpoint", endpoint),
					zap.String("transport", transport.Name()),
					zap.Error(err))
				continue
			}

			reqCtx, cancel := context.WithTimeout(ctx, b.requestTimeout)
			body, err := transport.Generate(reqCtx, endpoint, inputText)
			cancel()
			if err != nil {
				b.logger.Warn("generation request failed",
					zap.String("endpoint", endpoint),
					zap.String("transport", transport.Name()),
					zap.Error(err))
				continue
			}

			b.logger.Info("generation service reached",
				zap.String("endpoint", endpoint),
				zap.String("transport", transport.Name()),
				zap.Int("body_len", len(body)))
			return &Result{Body: body, Endpoint: endpoint, Transport: transport.Name()}, nil
		}
	}

	return nil, apperrors.ErrGeneratorUnreachable
}

// pooledTransport reaches the service through the shared net/http client.
type pooledTransport struct {
	client *http.Client
}

func newPooledTransport() *pooledTransport {
	// No client-level timeout: each call carries its own context deadline.
	return &pooledTransport{client: &http.Client{}}
}

func (t *pooledTransport) Name() string { return "pooled" }

func (t *pooledTransport) Probe(ctx context.Context, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+healthPath, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

func (t *pooledTransport) Generate(ctx context.Context, baseURL, inputText string) (string, error) {
	payload, err := json.Marshal(generateRequest{InputText: inputText})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+outlinePath, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation returned status %d", resp.StatusCode)
	}
	return string(body), nil
}

// directTransport speaks HTTP/1.1 over a raw TCP connection, bypassing the
// net/http client machinery entirely. It exists as an independent second
// stack for deployment environments where the pooled client's connection
// handling misbehaves.
type directTransport struct {
	dialer *net.Dialer
}

func newDirectTransport() *directTransport {
	return &directTransport{dialer: &net.Dialer{}}
}

func (t *directTransport) Name() string { return "direct" }

func (t *directTransport) Probe(ctx context.Context, baseURL string) error {
	resp, err := t.roundTrip(ctx, baseURL, http.MethodGet, healthPath, nil)
	if err != nil {
		return err
	}
	if resp.status != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.status)
	}
	return nil
}

func (t *directTransport) Generate(ctx context.Context, baseURL, inputText string) (string, error) {
	payload, err := json.Marshal(generateRequest{InputText: inputText})
	if err != nil {
		return "", err
	}

	resp, err := t.roundTrip(ctx, baseURL, http.MethodPost, outlinePath, payload)
	if err != nil {
		return "", err
	}
	if resp.status != http.StatusOK {
		return "", fmt.Errorf("generation returned status %d", resp.status)
	}
	return resp.body, nil
}

type rawResponse struct {
	status int
	body   string
}

// roundTrip performs one hand-rolled HTTP/1.1 exchange. Connections are never
// reused; the context deadline bounds the whole exchange via the socket
// deadline.
func (t *directTransport) roundTrip(ctx context.Context, baseURL, method, path string, payload []byte) (*rawResponse, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme != "http" {
		return nil, fmt.Errorf("direct transport supports http only, got %q", u.Scheme)
	}
	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), "80")
	}

	conn, err := t.dialer.DialContext(ctx, "tcp", host)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %s HTTP/1.1\r\n", method, path)
	fmt.Fprintf(&buf, "Host: %s\r\n", u.Host)
	buf.WriteString("Accept: application/json\r\n")
	buf.WriteString("Connection: close\r\n")
	if payload != nil {
		buf.WriteString("Content-Type: application/json\r\n")
		fmt.Fprintf(&buf, "Content-Length: %d\r\n", len(payload))
	}
	buf.WriteString("\r\n")
	buf.Write(payload)

	if _, err := conn.Write(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &rawResponse{status: resp.StatusCode, body: string(body)}, nil
}
