package clients

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/s0up4200/arrdeck/config"
	"github.com/s0up4200/arrdeck/status"
)

// session holds what every HTTP backed adapter shares: identity, endpoint,
// credentials and the HTTP client whose jar carries login cookies.
type session struct {
	id       string
	name     string
	label    string
	baseURL  string
	username string
	password string

	httpClient *http.Client
	logger     zerolog.Logger
	publisher  status.Publisher

	// mu guards the per-backend authentication state embedded alongside.
	mu sync.Mutex
}

func newSession(id, name string, cfg config.ClientConfig, o options) *session {
	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
		if cfg.Timeout <= 0 {
			httpClient.Timeout = 30 * time.Second
		}
	}
	if httpClient.Jar == nil {
		jar, _ := cookiejar.New(nil)
		copied := *httpClient
		copied.Jar = jar
		httpClient = &copied
	}

	label := cfg.Name
	if label == "" {
		label = id
	}

	return &session{
		id:         id,
		name:       name,
		label:      label,
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: httpClient,
		logger:     o.logger.With().Str("client", label).Str("type", id).Logger(),
		publisher:  o.publisher,
	}
}

// ID returns the backend identifier
func (s *session) ID() string { return s.id }

// Name returns the backend display name
func (s *session) Name() string { return s.name }

func (s *session) emit(state status.State, msg string) {
	s.publisher.Publish(status.NewEvent(s.label, state, msg))
}

// connect wraps a backend login with status events.
func (s *session) connect(ctx context.Context, login func(context.Context) error) error {
	s.emit(status.StateConnecting, "connecting to "+s.name)
	if err := login(ctx); err != nil {
		s.emit(status.StateError, err.Error())
		return err
	}
	s.emit(status.StateConnected, "connected to "+s.name)
	return nil
}

type request struct {
	method string
	path   string
	query  url.Values
	form   url.Values
	body   []byte
	header http.Header
	basic  bool
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// doRequest performs an HTTP request against the backend and reads the body.
// Non-2xx statuses are returned to the caller rather than turned into errors,
// because several backends use them for handshakes.
func (s *session) doRequest(ctx context.Context, r request) (*response, error) {
	u := s.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case r.form != nil:
		body = strings.NewReader(r.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case r.body != nil:
		body = bytes.NewReader(r.body)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if r.basic && (s.username != "" || s.password != "") {
		req.SetBasicAuth(s.username, s.password)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", s.name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	s.logger.Trace().
		Str("method", r.method).
		Str("path", r.path).
		Int("status", resp.StatusCode).
		Msg("client request")

	return &response{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

// apiError builds an APIError from a response.
func (s *session) apiError(resp *response) error {
	msg := strings.TrimSpace(string(resp.body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		msg = http.StatusText(resp.status)
	}
	return &APIError{Client: s.name, StatusCode: resp.status, Message: msg}
}

func ok(status int) bool {
	return status >= 200 && status < 300
}
