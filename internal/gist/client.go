// Package gist talks to the GitHub Gist REST API and the OAuth device
// authorization endpoints.
package gist

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/golang/protobuf/proto"
	"github.com/google/go-github/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/poonai/gist/internal/config"
)

const (
	defaultAPIURL = "https://api.github.com/"
	defaultWebURL = "https://github.com/"
	listPageSize  = 100
)

type options struct {
	apiURL    string
	webURL    string
	transport http.RoundTripper
	log       *zap.Logger
}

// Option configures a Client or a DeviceFlow.
type Option func(*options)

// WithLogger sets the logger HTTP calls are reported to.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithAPIURL points the client at another REST API root.
func WithAPIURL(u string) Option {
	return func(o *options) {
		o.apiURL = u
	}
}

// WithWebURL points the device flow at another OAuth host.
func WithWebURL(u string) Option {
	return func(o *options) {
		o.webURL = u
	}
}

// WithTransport sets the round tripper requests are finally sent with.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		apiURL:    defaultAPIURL,
		webURL:    defaultWebURL,
		transport: http.DefaultTransport,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) httpClient() *http.Client {
	return &http.Client{Transport: &statusTransport{base: o.transport, log: o.log}}
}

// Gist is the part of a gist the CLI shows.
type Gist struct {
	ID          string   `json:"id" yaml:"id"`
	HTMLURL     string   `json:"html_url" yaml:"html_url"`
	GitPullURL  string   `json:"git_pull_url" yaml:"git_pull_url"`
	GitPushURL  string   `json:"git_push_url" yaml:"git_push_url"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Public      bool     `json:"public" yaml:"public"`
	Files       []string `json:"files,omitempty" yaml:"files,omitempty"`
}

func fromGitHub(g *github.Gist) Gist {
	files := make([]string, 0, len(g.Files))
	for name := range g.Files {
		files = append(files, string(name))
	}
	sort.Strings(files)
	return Gist{
		ID:          g.GetID(),
		HTMLURL:     g.GetHTMLURL(),
		GitPullURL:  g.GetGitPullURL(),
		GitPushURL:  g.GetGitPushURL(),
		Description: g.GetDescription(),
		Public:      g.GetPublic(),
		Files:       files,
	}
}

// User is the authenticated GitHub account.
type User struct {
	Login   string
	HTMLURL string
}

// UploadRequest creates a gist. Files maps file names to their content.
type UploadRequest struct {
	Files       map[string]string
	Description string
	Public      bool
}

// UpdateRequest edits a gist. Files are added or overwritten, Remove
// names files to delete. An empty Description leaves it unchanged.
type UpdateRequest struct {
	Files       map[string]string
	Remove      []string
	Description string
}

type fileContent struct {
	Content string `json:"content"`
}

// updateBody is sent instead of github.Gist because removed files must be
// encoded as null.
type updateBody struct {
	Description *string                 `json:"description,omitempty"`
	Files       map[string]*fileContent `json:"files,omitempty"`
}

// Client performs gist operations with one login.
type Client struct {
	gh *github.Client
}

// NewClient returns a Client authenticating with login. A zero login
// makes anonymous requests.
func NewClient(ctx context.Context, login config.Login, opts ...Option) (*Client, error) {
	o := newOptions(opts)
	base := o.httpClient()

	var hc *http.Client
	switch login.Kind() {
	case config.KindOAuth:
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: login.Token()})
		hc = oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, base), ts)
	case config.KindPersonalAccessToken:
		hc = (&github.BasicAuthTransport{
			Username:  login.Username(),
			Password:  login.Token(),
			Transport: base.Transport,
		}).Client()
	default:
		hc = base
	}

	apiURL := o.apiURL
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("parsing api url: %w", err)
	}
	gh := github.NewClient(hc)
	gh.BaseURL = u
	return &Client{gh: gh}, nil
}

// User returns the account the login belongs to.
func (c *Client) User(ctx context.Context) (*User, error) {
	u, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &User{Login: u.GetLogin(), HTMLURL: u.GetHTMLURL()}, nil
}

// Upload creates a new gist.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (*Gist, error) {
	files := make(map[github.GistFilename]github.GistFile, len(req.Files))
	for name, content := range req.Files {
		files[github.GistFilename(name)] = github.GistFile{Content: proto.String(content)}
	}
	in := &github.Gist{
		Files:  files,
		Public: proto.Bool(req.Public),
	}
	if req.Description != "" {
		in.Description = proto.String(req.Description)
	}
	g, _, err := c.gh.Gists.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("creating gist: %w", err)
	}
	out := fromGitHub(g)
	return &out, nil
}

// Update edits the gist with the given id.
func (c *Client) Update(ctx context.Context, id string, req UpdateRequest) (*Gist, error) {
	if req.Description == "" && len(req.Files) == 0 && len(req.Remove) == 0 {
		return nil, ErrNothingToUpdate
	}
	body := updateBody{}
	if req.Description != "" {
		body.Description = proto.String(req.Description)
	}
	if len(req.Files) > 0 || len(req.Remove) > 0 {
		body.Files = make(map[string]*fileContent, len(req.Files)+len(req.Remove))
	}
	for _, name := range req.Remove {
		body.Files[name] = nil
	}
	for name, content := range req.Files {
		body.Files[name] = &fileContent{Content: content}
	}

	r, err := c.gh.NewRequest(http.MethodPatch, "gists/"+url.PathEscape(id), body)
	if err != nil {
		return nil, err
	}
	g := new(github.Gist)
	if _, err := c.gh.Do(ctx, r, g); err != nil {
		return nil, fmt.Errorf("updating gist %s: %w", id, err)
	}
	out := fromGitHub(g)
	return &out, nil
}

// List returns the gists of user, or of the authenticated user when user
// is empty. All pages are fetched.
func (c *Client) List(ctx context.Context, user string) ([]Gist, error) {
	gists, err := collect(func(opt *github.GistListOptions) ([]*github.Gist, *github.Response, error) {
		return c.gh.Gists.List(ctx, user, opt)
	})
	if err != nil {
		return nil, fmt.Errorf("listing gists: %w", err)
	}
	return gists, nil
}

// ListStarred returns the gists the authenticated user starred.
func (c *Client) ListStarred(ctx context.Context) ([]Gist, error) {
	gists, err := collect(func(opt *github.GistListOptions) ([]*github.Gist, *github.Response, error) {
		return c.gh.Gists.ListStarred(ctx, opt)
	})
	if err != nil {
		return nil, fmt.Errorf("listing starred gists: %w", err)
	}
	return gists, nil
}

// Delete removes the gist with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	if _, err := c.gh.Gists.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting gist %s: %w", id, err)
	}
	return nil
}

func collect(page func(*github.GistListOptions) ([]*github.Gist, *github.Response, error)) ([]Gist, error) {
	opt := &github.GistListOptions{ListOptions: github.ListOptions{PerPage: listPageSize}}
	var out []Gist
	for {
		gists, resp, err := page(opt)
		if err != nil {
			return nil, err
		}
		for _, g := range gists {
			out = append(out, fromGitHub(g))
		}
		if resp == nil || resp.NextPage == 0 {
			return out, nil
		}
		opt.Page = resp.NextPage
	}
}
