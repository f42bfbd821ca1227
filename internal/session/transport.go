package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
)

type retriedKey struct{}

// maxDrain bounds how much of a discarded 401 body is read before closing it.
const maxDrain = 64 << 10

// IsAuthEndpoint reports whether path belongs to the authentication API.
// Requests to it are never refreshed and retried.
func IsAuthEndpoint(path string) bool {
	return strings.Contains(path, "/auth/")
}

// Retried reports whether ctx belongs to a request that was already replayed
// after a refresh.
func Retried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey{}).(bool)
	return v
}

// Transport returns a RoundTripper that attaches the bearer token to every
// request and, on a 401 from a non-auth endpoint, refreshes the session once
// and replays the request. If the refresh fails the session is cleared and
// the original 401 response is returned. The notifier is told only when an
// authenticated session ends this way; a 401 on an anonymous request is
// returned silently.
//
// A request is never replayed under another user's credential: if the
// session is replaced while its refresh is in flight, the original 401 is
// returned and the new session is left alone.
//
// The replay goes straight to next, so middleware wrapped outside the
// returned RoundTripper sees one request, not two.
func (m *Manager) Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &transport{m: m, next: next}
}

type transport struct {
	m    *Manager
	next http.RoundTripper
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	gen := t.m.generation()
	issuer := t.m.userID()

	out := req.Clone(req.Context())
	t.m.Authorize(out)

	resp, err := t.next.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || Retried(req.Context()) || IsAuthEndpoint(req.URL.Path) {
		return resp, nil
	}

	// The body has to be reproducible to replay the request.
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		return resp, nil
	}

	ctx := req.Context()
	token, err := t.m.doRefresh(ctx)
	if errors.Is(err, ErrSessionChanged) {
		return resp, nil
	}
	if err != nil {
		if ctx.Err() == nil {
			t.m.logger.InfoContext(ctx, "refresh after 401 failed", "path", req.URL.Path, "error", err)
			t.m.expire(ctx, gen)
		}
		return resp, nil
	}
	if issuer != "" && t.m.userID() != issuer {
		return resp, nil
	}

	retry := req.Clone(context.WithValue(ctx, retriedKey{}, true))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return resp, nil
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+token)

	drain(resp.Body)
	return t.next.RoundTrip(retry)
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxDrain))
	_ = body.Close()
}
