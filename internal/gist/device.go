package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cli/oauth/api"
	"github.com/cli/oauth/device"
	"go.uber.org/zap"

	"github.com/poonai/gist/internal/config"
)

const (
	// defaultPollInterval is GitHub's minimum when no interval is sent.
	defaultPollInterval = 5 * time.Second

	deviceCodePath  = "login/device/code"
	accessTokenPath = "login/oauth/access_token"
	deviceGrantType = "urn:ietf:params:oauth:grant-type:device_code"
)

// DeviceFlow runs the OAuth device authorization grant against GitHub.
type DeviceFlow struct {
	clientID string
	codeURL  string
	tokenURL string
	http     *http.Client
	log      *zap.Logger
	sleep    func(context.Context, time.Duration) error
}

// NewDeviceFlow returns a DeviceFlow for the OAuth app clientID.
func NewDeviceFlow(clientID string, opts ...Option) *DeviceFlow {
	o := newOptions(opts)
	web := strings.TrimSuffix(o.webURL, "/") + "/"
	return &DeviceFlow{
		clientID: clientID,
		codeURL:  web + deviceCodePath,
		tokenURL: web + accessTokenPath,
		http:     o.httpClient(),
		log:      o.log,
		sleep:    sleepContext,
	}
}

type codeRequest struct {
	ClientID string `json:"client_id"`
	Scope    string `json:"scope"`
}

type codeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

type tokenRequest struct {
	ClientID   string `json:"client_id"`
	DeviceCode string `json:"device_code"`
	GrantType  string `json:"grant_type"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	Error       string `json:"error"`
	ErrorDesc   string `json:"error_description"`
}

// RequestCode asks GitHub for a device code and the user code the user
// has to enter at the verification URI.
func (f *DeviceFlow) RequestCode(ctx context.Context, scopes ...string) (*device.CodeResponse, error) {
	var res codeResponse
	err := f.post(ctx, f.codeURL, codeRequest{ClientID: f.clientID, Scope: strings.Join(scopes, " ")}, &res)
	if err != nil {
		return nil, fmt.Errorf("requesting verification code: %w", err)
	}
	return &device.CodeResponse{
		DeviceCode:      res.DeviceCode,
		UserCode:        res.UserCode,
		VerificationURI: res.VerificationURI,
		ExpiresIn:       res.ExpiresIn,
		Interval:        res.Interval,
	}, nil
}

// PollToken waits code.Interval seconds (5 when unset) before every access
// token request until the user authorized the device. authorization_pending
// keeps the loop going; any other error code or a 4xx/5xx status ends it.
func (f *DeviceFlow) PollToken(ctx context.Context, code *device.CodeResponse) (config.Login, error) {
	interval := time.Duration(code.Interval) * time.Second
	if interval <= 0 {
		interval = defaultPollInterval
	}
	for {
		if err := f.sleep(ctx, interval); err != nil {
			return config.Login{}, err
		}
		token, err := f.requestToken(ctx, code.DeviceCode)
		if errors.Is(err, errAuthorizationPending) {
			f.log.Debug("authorization pending", zap.Duration("interval", interval))
			continue
		}
		if err != nil {
			return config.Login{}, err
		}
		f.log.Debug("device authorized", zap.String("type", token.Type), zap.String("scope", token.Scope))
		return config.OAuth(token.Token), nil
	}
}

func (f *DeviceFlow) requestToken(ctx context.Context, deviceCode string) (*api.AccessToken, error) {
	var res tokenResponse
	err := f.post(ctx, f.tokenURL, tokenRequest{
		ClientID:   f.clientID,
		DeviceCode: deviceCode,
		GrantType:  deviceGrantType,
	}, &res)
	if err != nil {
		return nil, fmt.Errorf("requesting access token: %w", err)
	}
	switch {
	case res.AccessToken != "":
		return &api.AccessToken{Token: res.AccessToken, Type: res.TokenType, Scope: res.Scope}, nil
	case res.Error == "authorization_pending":
		return nil, errAuthorizationPending
	case res.Error != "":
		return nil, &DeviceFlowError{Code: res.Error, Description: res.ErrorDesc}
	}
	return nil, errors.New("access token response has neither a token nor an error")
}

func (f *DeviceFlow) post(ctx context.Context, url string, in, out interface{}) error {
	buf, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := f.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
