package downloader

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/xerrors"
)

const (
	fileScheme = "file://"
	cacheSize  = 100000
)

var ErrNotFound = xerrors.New("not found")

type Option struct {
	RetryMax int
	// HTTPClient overrides the client built from RetryMax.
	HTTPClient *retryablehttp.Client
}

// Downloader checks for and fetches files in local (`file://` or plain path) and HTTP repositories.
type Downloader struct {
	http   *retryablehttp.Client
	exists *lru.Cache[string, bool]
	logger *slog.Logger
}

func NewHTTPClient(retryMax int) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.Logger = slog.Default()
	client.RetryWaitMin = 1 * time.Second
	client.RetryWaitMax = 30 * time.Second
	client.Backoff = retryablehttp.LinearJitterBackoff
	client.ResponseLogHook = func(_ retryablehttp.Logger, resp *http.Response) {
		// Missing files are expected while probing candidate repositories.
		if resp.StatusCode == http.StatusNotFound {
			return
		}
		if resp.StatusCode >= http.StatusBadRequest {
			slog.Warn("Unexpected http response", slog.String("url", resp.Request.URL.String()), slog.String("status", resp.Status))
		}
	}
	client.ErrorHandler = func(resp *http.Response, err error, numTries int) (*http.Response, error) {
		logger := slog.Default()
		if resp != nil {
			logger = slog.With(slog.String("url", resp.Request.URL.String()), slog.Int("status_code", resp.StatusCode),
				slog.Int("num_tries", numTries))
		}

		if err != nil {
			logger = logger.With(slog.String("error", err.Error()))
		}
		logger.Error("HTTP request failed after retries")
		if err == nil {
			return resp, nil
		}
		return resp, xerrors.Errorf("HTTP request failed after retries: %w", err)
	}
	return client
}

func NewDownloader(opt Option) (*Downloader, error) {
	client := opt.HTTPClient
	if client == nil {
		client = NewHTTPClient(opt.RetryMax)
	}

	cache, err := lru.New[string, bool](cacheSize)
	if err != nil {
		return nil, xerrors.Errorf("unable to create a cache: %w", err)
	}

	return &Downloader{
		http:   client,
		exists: cache,
		logger: slog.Default().With(slog.String("component", "downloader")),
	}, nil
}

// Exists reports whether the file or directory at the URL exists.
func (d *Downloader) Exists(ctx context.Context, url string) (bool, error) {
	if ok, found := d.exists.Get(url); found {
		return ok, nil
	}

	var ok bool
	if p, local := LocalPath(url); local {
		if _, err := os.Stat(p); err == nil {
			ok = true
		} else if !errors.Is(err, os.ErrNotExist) {
			return false, xerrors.Errorf("stat error: %w", err)
		}
	} else {
		resp, err := d.do(ctx, http.MethodHead, url)
		if err != nil {
			return false, xerrors.Errorf("http head error: %w", err)
		}
		_ = resp.Body.Close()
		ok = resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
	}

	d.exists.Add(url, ok)
	return ok, nil
}

// Download saves the file at the URL into dir and returns the local file path.
// ErrNotFound is returned when the file doesn't exist.
func (d *Downloader) Download(ctx context.Context, url, dir string) (string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", xerrors.Errorf("unable to create a directory: %w", err)
	}
	filePath := filepath.Join(dir, path.Base(url))

	var r io.ReadCloser
	if p, local := LocalPath(url); local {
		f, err := os.Open(p)
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		} else if err != nil {
			return "", xerrors.Errorf("unable to open %s: %w", p, err)
		}
		r = f
	} else {
		resp, err := d.do(ctx, http.MethodGet, url)
		if err != nil {
			return "", xerrors.Errorf("http get error: %w", err)
		}
		if resp.StatusCode == http.StatusNotFound {
			_ = resp.Body.Close()
			return "", ErrNotFound
		} else if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return "", xerrors.Errorf("unexpected status %s (%s)", resp.Status, url)
		}
		r = resp.Body
	}
	defer r.Close()

	f, err := os.Create(filePath)
	if err != nil {
		return "", xerrors.Errorf("can't create file %s: %w", filePath, err)
	}
	defer f.Close()

	d.logger.Debug("Saving file", slog.String("url", url), slog.String("path", filePath))
	if _, err = io.Copy(f, r); err != nil {
		return "", xerrors.Errorf("can't copy file %s: %w", filePath, err)
	}
	return filePath, nil
}

func (d *Downloader) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, xerrors.Errorf("unable to create a HTTP request: %w", err)
	}
	resp, err := d.http.Do(req)
	if err != nil {
		return nil, xerrors.Errorf("http error (%s): %w", url, err)
	}
	return resp, nil
}

// LocalPath returns the filesystem path for `file://` URLs and scheme-less paths.
func LocalPath(url string) (string, bool) {
	if strings.HasPrefix(url, fileScheme) {
		return strings.TrimPrefix(url, fileScheme), true
	}
	if !strings.Contains(url, "://") {
		return url, true
	}
	return "", false
}
