// Package iofetch implements the Fetcher interface. It downloads the
// listing pages of the municipal item dictionary and writes them as the
// raw item catalogue.
//
// This is an impure I/O package. Pages after the first are fetched
// concurrently by a bounded group of workers that share one rate
// limiter.
package iofetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/HashiReo/nonoichi-waste-app/internal/iocatalog"
	"github.com/HashiReo/nonoichi-waste-app/internal/iofs"
	"github.com/HashiReo/nonoichi-waste-app/pkg/config"
	"github.com/HashiReo/nonoichi-waste-app/pkg/lifecycle"
	"github.com/cenkalti/backoff/v4"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// UserAgent identifies the fetcher to the dictionary site.
const UserAgent = "Mozilla/5.0 (compatible; NonoichiWasteCollector/1.0)"

// FailedPagesFile is written next to the catalogue when some pages
// could not be fetched.
const FailedPagesFile = "failed_pages.txt"

type fetcher struct {
	cfg     *config.Config
	client  *http.Client
	limiter *rate.Limiter
	backOff func() backoff.BackOff
}

// Option configures a fetcher.
type Option func(*fetcher)

// OptClient replaces the HTTP client.
func OptClient(c *http.Client) Option {
	return func(f *fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// OptBackOff replaces the retry policy between attempts of one page.
// The number of attempts is always capped by fetch.retries.
func OptBackOff(fn func() backoff.BackOff) Option {
	return func(f *fetcher) {
		if fn != nil {
			f.backOff = fn
		}
	}
}

// New creates a new Fetcher.
func New(cfg *config.Config, opts ...Option) lifecycle.Fetcher {
	limit := rate.Inf
	if pps := cfg.Fetch.PagesPerSecond; pps > 0 {
		limit = rate.Limit(pps)
	}
	res := &fetcher{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.Fetch.TimeoutSec) * time.Second,
		},
		limiter: rate.NewLimiter(limit, 1),
		backOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxInterval = 10 * time.Second
			return b
		},
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// pageResult keeps the outcome of one listing page.
type pageResult struct {
	rows   []iocatalog.Row
	empty  bool
	failed bool
}

// Fetch reads the page count from the first page, downloads the rest
// and writes all rows in page order. Rows of pages after the first
// empty page are dropped.
func (f *fetcher) Fetch(ctx context.Context) (*lifecycle.FetchReport, error) {
	start := time.Now()
	base := f.cfg.Fetch.BaseURL
	out := f.cfg.FetchOutputPath()
	slog.Info("Starting fetch", "base_url", base, "output", out)

	doc, err := f.page(ctx, 1)
	if err != nil {
		return nil, PageError(base, 1, err)
	}
	first, err := parseRows(strings.NewReader(doc), 1)
	if err != nil {
		return nil, ParseError(1, err)
	}
	if len(first) == 0 {
		return nil, NoDataError(base)
	}

	total := totalPages(doc)
	if total == 0 || total > f.cfg.Fetch.MaxPage {
		total = f.cfg.Fetch.MaxPage
	}
	gn.Info("Fetching <em>%d</em> pages of %s", total, base)

	results := make([]pageResult, total+1)
	results[1] = pageResult{rows: first}
	if err = f.fetchRest(ctx, results); err != nil {
		return nil, err
	}

	report := &lifecycle.FetchReport{Pages: total, OutputPath: out}
	var rows []iocatalog.Row
	for p := 1; p <= total; p++ {
		res := results[p]
		if res.empty {
			slog.Info("Empty page, stopping", "page", p)
			break
		}
		if res.failed {
			report.FailedPages = append(report.FailedPages, p)
			continue
		}
		rows = append(rows, res.rows...)
	}
	report.Rows = len(rows)

	data, err := iocatalog.Encode(rows)
	if err != nil {
		return nil, err
	}
	if err = iofs.WriteFileAtomic(out, data); err != nil {
		return nil, err
	}
	if report.FailedPagesPath, err = f.writeFailed(out, report.FailedPages); err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	slog.Info("Fetch complete",
		"pages", report.Pages,
		"rows", report.Rows,
		"failed_pages", len(report.FailedPages),
		"duration", gnfmt.TimeString(report.Duration.Seconds()),
	)
	gn.Info(`Fetched <em>%s</em> items from %d pages
Elapsed time: <em>%s</em>
`,
		humanize.Comma(int64(report.Rows)),
		report.Pages,
		gnfmt.TimeString(report.Duration.Seconds()),
	)
	if n := len(report.FailedPages); n > 0 {
		gn.Warn("<warn>%d pages failed, see %s</warn>", n, report.FailedPagesPath)
	}
	return report, nil
}

// fetchRest downloads pages 2 and up into results. Page failures are
// recorded in results, only cancellation stops the group.
func (f *fetcher) fetchRest(ctx context.Context, results []pageResult) error {
	total := len(results) - 1
	if total < 2 {
		return nil
	}

	bar := newProgressBar(total-1, "pages: ")
	defer bar.Finish()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(f.cfg.JobsNumber, 1))

	for p := 2; p <= total; p++ {
		g.Go(func() error {
			defer bar.Increment()

			var res pageResult
			doc, err := f.page(ctx, p)
			switch {
			case ctx.Err() != nil:
				return ctx.Err()
			case err != nil:
				slog.Warn("Page failed", "page", p, "error", err)
				res.failed = true
			default:
				res.rows, err = parseRows(strings.NewReader(doc), p)
				if err != nil {
					slog.Warn("Page has no item table", "page", p, "error", err)
					res.failed = true
				}
				res.empty = !res.failed && len(res.rows) == 0
			}

			results[p] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return CancelledError(err)
	}
	return nil
}

// page downloads one listing page with capped retries. Client errors
// other than 429 are not retried.
func (f *fetcher) page(ctx context.Context, n int) (string, error) {
	u, err := pageURL(f.cfg.Fetch.BaseURL, n)
	if err != nil {
		return "", backoff.Permanent(err)
	}
	attempts := max(f.cfg.Fetch.Retries, 1)
	b := backoff.WithContext(
		backoff.WithMaxRetries(f.backOff(), uint64(attempts-1)), ctx)

	var attempt int
	op := func() (string, error) {
		attempt++
		if err := f.limiter.Wait(ctx); err != nil {
			return "", backoff.Permanent(err)
		}
		doc, err := f.get(ctx, u)
		if err != nil {
			slog.Debug("Attempt failed", "page", n, "attempt", attempt, "error", err)
		}
		return doc, err
	}
	return backoff.RetryWithData(op, b)
}

func (f *fetcher) get(ctx context.Context, u string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("%s: %s", u, resp.Status)
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", backoff.Permanent(err)
		}
		return "", err
	}
	return string(body), nil
}

// writeFailed records failed page numbers one per line next to the
// catalogue. A stale file is removed when every page was fetched.
func (f *fetcher) writeFailed(out string, pages []int) (string, error) {
	path := filepath.Join(filepath.Dir(out), FailedPagesFile)
	if len(pages) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", iofs.WriteFileError(path, err)
		}
		return "", nil
	}

	slices.Sort(pages)
	var buf bytes.Buffer
	for _, p := range pages {
		buf.WriteString(strconv.Itoa(p))
		buf.WriteByte('\n')
	}
	return path, iofs.WriteFileAtomic(path, buf.Bytes())
}

func pageURL(base string, n int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(n))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
