// Package scraper pulls rental listings from third-party feeds and
// upserts them into the store. Feed pages embed their data as a
// __NEXT_DATA__ JSON blob; we extract it, normalize the fields and keep
// only what the rest of the app needs.
package scraper

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Liancohen0104/Rentmate/internal/config"
	"github.com/Liancohen0104/Rentmate/internal/model"
	"github.com/Liancohen0104/Rentmate/internal/store"
)

// Scraper fetches listing feeds and persists the results.
type Scraper struct {
	store      store.Store
	sources    []Source
	httpClient *http.Client
	limiter    *rate.Limiter
	maxPages   int
	parallel   int
}

// New creates a Scraper over the given sources.
func New(st store.Store, sources []Source, cfg config.ScrapeConfig) *Scraper {
	ratePerSec := cfg.RatePerSec
	if ratePerSec <= 0 {
		ratePerSec = 2
	}
	parallel := cfg.Concurrency
	if parallel <= 0 {
		parallel = 3
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 5
	}
	return &Scraper{
		store:      st,
		sources:    sources,
		httpClient: &http.Client{Timeout: 45 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		maxPages:   maxPages,
		parallel:   parallel,
	}
}

// Run scrapes every source and upserts the listings. Sources run
// concurrently; pages within a source run sequentially because the feed
// paginates until empty. Returns the number of listings stored.
func (s *Scraper) Run(ctx context.Context) (int, error) {
	runID := uuid.NewString()
	zap.L().Info("scraper: run starting",
		zap.String("run_id", runID),
		zap.Int("sources", len(s.sources)),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)

	results := make([][]model.Listing, len(s.sources))
	for i, src := range s.sources {
		g.Go(func() error {
			listings, err := s.scrapeSource(ctx, src)
			if err != nil {
				return eris.Wrapf(err, "scraper: source %s", src.Name)
			}
			results[i] = listings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var all []model.Listing
	for _, r := range results {
		all = append(all, r...)
	}
	if len(all) == 0 {
		zap.L().Info("scraper: nothing to store")
		return 0, nil
	}

	stored, err := s.store.UpsertListings(ctx, all)
	if err != nil {
		return stored, eris.Wrap(err, "scraper: upsert listings")
	}
	zap.L().Info("scraper: run complete",
		zap.String("run_id", runID),
		zap.Int("stored", stored),
	)
	return stored, nil
}

// scrapeSource walks a source's pages until an empty page or the page cap.
func (s *Scraper) scrapeSource(ctx context.Context, src Source) ([]model.Listing, error) {
	maxPages := src.MaxPages
	if maxPages <= 0 {
		maxPages = s.maxPages
	}

	var listings []model.Listing
	for page := 1; page <= maxPages; page++ {
		raws, enums, err := s.fetchPage(ctx, src, page)
		if err != nil {
			return nil, eris.Wrapf(err, "page %d", page)
		}
		if len(raws) == 0 {
			break
		}
		for _, raw := range raws {
			if raw.OrderID == 0 {
				continue
			}
			listings = append(listings, normalize(raw, enums, src.BaseURL))
		}
	}
	return listings, nil
}

// nextData mirrors the parts of the embedded page state we care about.
type nextData struct {
	Props struct {
		PageProps struct {
			Enums           feedEnums `json:"enums"`
			DehydratedState struct {
				Queries []struct {
					State struct {
						Data struct {
							Private []rawListing `json:"private"`
						} `json:"data"`
					} `json:"state"`
				} `json:"queries"`
			} `json:"dehydratedState"`
		} `json:"pageProps"`
	} `json:"props"`
}

func (s *Scraper) fetchPage(ctx context.Context, src Source, page int) ([]rawListing, feedEnums, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, feedEnums{}, eris.Wrap(err, "rate limit")
	}

	params := url.Values{}
	for k, v := range src.Params {
		params.Set(k, v)
	}
	params.Set("Page", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, feedEnums{}, eris.Wrap(err, "build request")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, feedEnums{}, eris.Wrap(err, "request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, feedEnums{}, eris.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, feedEnums{}, eris.Wrap(err, "read body")
	}

	blob, err := extractNextData(string(body))
	if err != nil {
		return nil, feedEnums{}, err
	}

	var data nextData
	if err := json.Unmarshal([]byte(blob), &data); err != nil {
		return nil, feedEnums{}, eris.Wrap(err, "parse next data")
	}

	enums := data.Props.PageProps.Enums
	for _, q := range data.Props.PageProps.DehydratedState.Queries {
		if len(q.State.Data.Private) > 0 {
			return q.State.Data.Private, enums, nil
		}
	}
	return nil, enums, nil
}

const nextDataMarker = `id="__NEXT_DATA__"`

// extractNextData pulls the embedded JSON out of the page HTML. The
// blob sits inside a <script id="__NEXT_DATA__"> element.
func extractNextData(html string) (string, error) {
	idx := strings.Index(html, nextDataMarker)
	if idx < 0 {
		return "", eris.New("no __NEXT_DATA__ script in page")
	}
	rest := html[idx:]

	open := strings.Index(rest, ">")
	if open < 0 {
		return "", eris.New("malformed __NEXT_DATA__ script tag")
	}
	rest = rest[open+1:]

	end := strings.Index(rest, "</script>")
	if end < 0 {
		return "", eris.New("unterminated __NEXT_DATA__ script")
	}
	return strings.TrimSpace(rest[:end]), nil
}
