package github

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kevinmichaelchen/repo-fit/internal/logging"
	"github.com/kevinmichaelchen/repo-fit/internal/models"
)

// FetchLanguageHistogram sums language byte counts across repos. Repos
// without a languages URL are skipped and a failed request contributes
// nothing; there is no rollback.
func (c *Client) FetchLanguageHistogram(ctx context.Context, repos []models.Repository) map[string]int {
	logger := logging.FromContext(ctx)
	histogram := make(map[string]int)
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, repo := range repos {
		if repo.LanguagesURL == "" {
			continue
		}
		g.Go(func() error {
			langs, err := c.fetchLanguages(gCtx, repo.LanguagesURL)
			if err != nil {
				logger.Debug("skipping languages", "repo", repo.Name, "err", err)
				return nil
			}
			mu.Lock()
			for lang, n := range langs {
				histogram[lang] += n
			}
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return histogram
}

func (c *Client) fetchLanguages(ctx context.Context, languagesURL string) (map[string]int, error) {
	req, err := c.gh.NewRequest(http.MethodGet, languagesURL, nil)
	if err != nil {
		return nil, err
	}
	var langs map[string]int
	if _, err := c.gh.Do(ctx, req, &langs); err != nil {
		return nil, classify(err)
	}
	return langs, nil
}
