package repository

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/xerrors"
)

var _ Lister = (*HTMLLister)(nil)

// HTMLLister crawls HTTP directory index pages, e.g. https://repo.maven.apache.org/maven2/
type HTMLLister struct {
	http   *retryablehttp.Client
	logger *slog.Logger
}

func NewHTMLLister(client *retryablehttp.Client) *HTMLLister {
	return &HTMLLister{
		http:   client,
		logger: slog.Default().With(slog.String("component", "html-lister")),
	}
}

func (l *HTMLLister) List(ctx context.Context, repoURL string) ([]string, error) {
	var lines []string
	if err := l.visit(ctx, strings.TrimSuffix(repoURL, "/")+"/", "./", &lines); err != nil {
		return nil, err
	}
	l.logger.Debug("Listed files", slog.String("url", repoURL), slog.Int("count", len(lines)))
	return lines, nil
}

func (l *HTMLLister) visit(ctx context.Context, url, prefix string, lines *[]string) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return xerrors.Errorf("unable to create a HTTP request: %w", err)
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return xerrors.Errorf("http error (%s): %w", url, err)
	}

	// There are cases when a listed directory doesn't exist
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		l.logger.Debug("Skipping directory", slog.String("url", url), slog.String("status", resp.Status))
		return nil
	}

	d, err := goquery.NewDocumentFromReader(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return xerrors.Errorf("can't create new goquery doc: %w", err)
	}

	var children []string
	d.Find("a").Each(func(_ int, selection *goquery.Selection) {
		link := linkFromSelection(selection)
		if link == "" || link == "../" || strings.HasPrefix(link, "/") || strings.HasPrefix(link, "?") ||
			strings.Contains(link, "://") {
			return
		}
		// only dirs have `/` suffix
		if strings.HasSuffix(link, "/") {
			children = append(children, link)
			return
		}
		*lines = append(*lines, prefix+link)
	})

	for _, child := range children {
		if err = l.visit(ctx, url+child, prefix+child, lines); err != nil {
			return err
		}
	}
	return nil
}

// linkFromSelection returns the link from goquery.Selection.
// There are times when maven breaks `text` - it removes part of the `text` and adds the suffix `...` (`.../` for dirs).
// e.g. `<a href="v1.1.0-226-g847ecff2d8e26f249422247d7665fe15f07b1744/">v1.1.0-226-g847ecff2d8e26f249422247d7665fe15.../</a>`
// In this case we should take `href`.
func linkFromSelection(selection *goquery.Selection) string {
	link := strings.TrimSpace(selection.Text())
	// maven uses `.../` suffix for dirs and `...` suffix for files.
	if href, ok := selection.Attr("href"); ok && (strings.HasSuffix(link, ".../") || strings.HasSuffix(link, "...")) {
		link = href
	}
	return link
}
