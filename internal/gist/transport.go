package gist

import (
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// statusTransport logs every request and turns 4xx and 5xx responses into
// *APIError so callers above go-github still see the raw body. Redirects
// pass through for http.Client to follow.
type statusTransport struct {
	base http.RoundTripper
	log  *zap.Logger
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.log.Debug("request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.Redacted()),
			zap.Error(err))
		return nil, err
	}
	t.log.Debug("request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 400 {
		return resp, nil
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return nil, &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
	}
}
