// Package github wraps the GitHub REST endpoints repo-fit reads: the user
// profile, the user's repositories, per-repository language breakdowns and
// README content.
package github

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/kevinmichaelchen/repo-fit/internal/models"
)

// ErrNotFound is returned when GitHub answers 404 or a README has no
// downloadable content.
var ErrNotFound = errors.New("not found")

// reposPageSize is GitHub's per_page cap. Only the first page is read.
const reposPageSize = 100

type Options struct {
	ClientID     string
	ClientSecret string
	Token        string
	// BaseURL overrides https://api.github.com/ (tests, GHE).
	BaseURL string
	// WaitRateLimit sleeps through GitHub secondary rate limits instead of
	// failing the request.
	WaitRateLimit bool
	// Concurrency bounds parallel language requests. 1 keeps them sequential.
	Concurrency int
	HTTPClient  *http.Client
}

// Client is a thin wrapper around the go-github REST client.
type Client struct {
	gh          *github.Client
	concurrency int
}

func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		transport, err := newTransport(opts)
		if err != nil {
			return nil, err
		}
		httpClient = &http.Client{Transport: transport}
	}

	gh := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parsing GitHub base URL: %w", err)
		}
		gh.BaseURL = u
	}

	return &Client{gh: gh, concurrency: max(opts.Concurrency, 1)}, nil
}

// newTransport layers authentication over an optional rate limit waiter.
// A client id/secret pair takes precedence over a token.
func newTransport(opts Options) (http.RoundTripper, error) {
	var base http.RoundTripper = http.DefaultTransport
	if opts.WaitRateLimit {
		waiter, err := github_ratelimit.NewRateLimitWaiter(base, github_ratelimit.WithSingleSleepLimit(time.Hour, nil))
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
		}
		base = waiter
	}

	switch {
	case opts.ClientID != "" && opts.ClientSecret != "":
		return &github.BasicAuthTransport{
			Username:  opts.ClientID,
			Password:  opts.ClientSecret,
			Transport: base,
		}, nil
	case opts.Token != "":
		return &oauth2.Transport{
			Base:   base,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
		}, nil
	default:
		return base, nil
	}
}

func (c *Client) FetchProfile(ctx context.Context, username string) (*models.Profile, error) {
	u, _, err := c.gh.Users.Get(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("fetching user %s: %w", username, classify(err))
	}
	return &models.Profile{
		Username:    u.GetLogin(),
		Name:        u.Name,
		Bio:         u.Bio,
		Location:    u.Location,
		Email:       u.Email,
		Blog:        u.Blog,
		Company:     u.Company,
		Followers:   u.GetFollowers(),
		Following:   u.GetFollowing(),
		PublicRepos: u.GetPublicRepos(),
		AvatarURL:   u.GetAvatarURL(),
		CreatedAt:   u.GetCreatedAt().Time,
	}, nil
}

// FetchRepositories returns the user's repositories, most recently updated
// first. It makes a single request and never retries.
func (c *Client) FetchRepositories(ctx context.Context, username string) ([]models.Repository, error) {
	opts := &github.RepositoryListByUserOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: reposPageSize},
	}
	repos, _, err := c.gh.Repositories.ListByUser(ctx, username, opts)
	if err != nil {
		return nil, fmt.Errorf("listing repos for %s: %w", username, classify(err))
	}

	out := make([]models.Repository, 0, len(repos))
	for _, r := range repos {
		out = append(out, toRepository(r))
	}
	return out, nil
}

// FetchReadme downloads the raw README of owner/repo: one request for the
// README metadata, then one for its download_url.
func (c *Client) FetchReadme(ctx context.Context, owner, repo string) (string, error) {
	meta, _, err := c.gh.Repositories.GetReadme(ctx, owner, repo, nil)
	if err != nil {
		return "", fmt.Errorf("readme metadata for %s/%s: %w", owner, repo, classify(err))
	}
	downloadURL := meta.GetDownloadURL()
	if downloadURL == "" {
		return "", fmt.Errorf("readme for %s/%s has no download url: %w", owner, repo, ErrNotFound)
	}

	req, err := c.gh.NewRequest(http.MethodGet, downloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating readme request: %w", err)
	}
	var buf bytes.Buffer
	if _, err := c.gh.Do(ctx, req, &buf); err != nil {
		return "", fmt.Errorf("downloading readme for %s/%s: %w", owner, repo, classify(err))
	}
	return buf.String(), nil
}

func toRepository(r *github.Repository) models.Repository {
	return models.Repository{
		Name:         r.GetName(),
		Description:  r.Description,
		Stars:        r.GetStargazersCount(),
		Forks:        r.GetForksCount(),
		Language:     r.Language,
		URL:          r.GetHTMLURL(),
		CreatedAt:    r.GetCreatedAt().Time,
		UpdatedAt:    r.GetUpdatedAt().Time,
		IsFork:       r.GetFork(),
		LanguagesURL: r.GetLanguagesURL(),
	}
}

// classify maps a GitHub 404 onto ErrNotFound and leaves other errors as-is.
func classify(err error) error {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
