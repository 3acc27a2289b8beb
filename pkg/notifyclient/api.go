package notifyclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	notify "github.com/tracepanic/compyle/pkg/notifications"
)

// ListResult is one page of notifications with the server's unread count.
type ListResult struct {
	Notifications []notify.Notification
	Unread        int
}

// API is a typed client of the notifications endpoints.
type API struct {
	client  *resty.Client
	limiter *rate.Limiter
	timeout time.Duration
	log     *slog.Logger
}

// Option configures API.
type Option func(*API)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *API) {
		if hc != nil {
			a.client = resty.NewWithClient(hc).
				SetBaseURL(a.client.BaseURL).
				SetAuthToken(a.client.Token)
		}
	}
}

// WithRateLimit caps outgoing requests to limit per second with burst.
func WithRateLimit(limit float64, burst int) Option {
	return func(a *API) { a.limiter = rate.NewLimiter(rate.Limit(limit), burst) }
}

// WithTimeout bounds every non-streaming request.
func WithTimeout(d time.Duration) Option {
	return func(a *API) { a.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *API) {
		if l != nil {
			a.log = l
		}
	}
}

// NewAPI returns a client for the notifications router mounted at baseURL,
// e.g. "https://app.example.com/notifications".
func NewAPI(baseURL, token string, opts ...Option) *API {
	a := &API{
		client:  resty.New().SetBaseURL(baseURL).SetAuthToken(token),
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		timeout: 10 * time.Second,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.client.
		SetHeader("Accept", "application/json").
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			return a.limiter.Wait(r.Context())
		})
	return a
}

type envelope[T any] struct {
	Data T `json:"data"`
	Meta struct {
		Unread int `json:"unread"`
	} `json:"meta"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// List fetches the newest notifications of the session user.
func (a *API) List(ctx context.Context) (ListResult, error) {
	var out envelope[[]notify.Notification]
	if err := a.do(ctx, http.MethodGet, "/", "", &out); err != nil {
		return ListResult{}, err
	}
	return ListResult{Notifications: out.Data, Unread: out.Meta.Unread}, nil
}

func (a *API) UnreadCount(ctx context.Context) (int, error) {
	var out envelope[struct {
		Unread int `json:"unread"`
	}]
	if err := a.do(ctx, http.MethodGet, "/unread-count", "", &out); err != nil {
		return 0, err
	}
	return out.Data.Unread, nil
}

func (a *API) MarkRead(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodPost, "/{id}/read", id, nil)
}

func (a *API) MarkUnread(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodPost, "/{id}/unread", id, nil)
}

func (a *API) MarkAllRead(ctx context.Context) error {
	return a.do(ctx, http.MethodPost, "/read-all", "", nil)
}

func (a *API) Delete(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/{id}", id, nil)
}

func (a *API) do(ctx context.Context, method, path, id string, result any) error {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	req := a.client.R().SetContext(ctx).SetError(&errorEnvelope{})
	if id != "" {
		req.SetPathParam("id", id)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return errors.Join(ErrRequestFailed, err)
	}
	return checkResponse(resp)
}

func checkResponse(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	se := &ServerError{Status: resp.StatusCode(), Code: http.StatusText(resp.StatusCode())}
	if env, ok := resp.Error().(*errorEnvelope); ok && env.Error.Code != "" {
		se.Code = env.Error.Code
		se.Message = env.Error.Message
	}
	return fmt.Errorf("%s %s: %w", resp.Request.Method, resp.Request.URL, se)
}
