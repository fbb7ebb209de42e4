package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/kapu/wiki-tweets-go/internal/util"
)

const (
	userAgent      = "Mozilla/5.0 (compatible; WikiTweets/1.0)"
	acceptLanguage = "en,ja;q=0.8"
	requestTimeout = 15 * time.Second
	maxPageBytes   = 20 << 20
)

func main() {
	urlsFile := flag.String("urls", "urls.txt", "file with one wiki URL per line")
	outDir := flag.String("out", "pages", "directory the pages are written to")
	parallel := flag.Int("parallel", 4, "number of concurrent downloads")
	flag.Parse()

	logger := util.NewLoggerWithWriter(os.Getenv("LOG_LEVEL"), os.Stderr)
	defer logger.Sync()

	urls, err := readURLs(*urlsFile)
	if err != nil {
		logger.Fatal("failed to read url list", zap.String("file", *urlsFile), zap.Error(err))
	}
	if len(urls) == 0 {
		logger.Fatal("url list is empty", zap.String("file", *urlsFile))
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Fatal("failed to create output directory", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f := &fetcher{
		client: &http.Client{Timeout: requestTimeout},
		outDir: *outDir,
		logger: logger,
	}
	saved := f.fetchAll(ctx, urls, *parallel)

	logger.Info("Page fetch completed",
		zap.Int("requested", len(urls)),
		zap.Int("saved", saved),
		zap.String("out", *outDir),
	)
	if saved == 0 {
		os.Exit(1)
	}
}

type fetcher struct {
	client *http.Client
	outDir string
	logger *zap.Logger
}

// fetchAll downloads urls through a bounded pool and returns how many pages were saved.
func (f *fetcher) fetchAll(ctx context.Context, urls []string, parallel int) int {
	if parallel <= 0 {
		parallel = 1
	}

	var saved atomic.Int64
	p := pool.New().WithMaxGoroutines(parallel)
	for idx, url := range urls {
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			path, err := f.fetchPage(ctx, url)
			if err != nil {
				f.logger.Error("failed to fetch page", zap.Int("index", idx+1), zap.String("url", url), zap.Error(err))
				return
			}
			saved.Add(1)
			f.logger.Info("Page saved", zap.Int("index", idx+1), zap.String("url", url), zap.String("path", path))
		})
	}
	p.Wait()

	return int(saved.Load())
}

func (f *fetcher) fetchPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes+1))
	if err != nil {
		return "", err
	}
	if len(body) > maxPageBytes {
		return "", fmt.Errorf("page exceeds %d bytes", maxPageBytes)
	}

	title, err := pageTitle(body)
	if err != nil {
		return "", err
	}

	slug := util.Slugify(title)
	if slug == "" {
		return "", fmt.Errorf("page title %q yields an empty file name", title)
	}

	path := filepath.Join(f.outDir, slug+".html")
	if err := util.WriteFileAtomic(path, body); err != nil {
		return "", err
	}
	return path, nil
}

// pageTitle returns the wiki header title, falling back to <title> with any
// " | Site" suffix removed.
func pageTitle(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	if title := strings.TrimSpace(doc.Find("h1.page-header__title").First().Text()); title != "" {
		return title, nil
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if i := strings.Index(title, "|"); i > 0 {
		title = strings.TrimSpace(title[:i])
	}
	if title == "" {
		return "", fmt.Errorf("page has no title")
	}
	return title, nil
}

func readURLs(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var urls []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
