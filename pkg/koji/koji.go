package koji

import (
	"bytes"
	"context"
	"encoding/xml"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/samber/lo"
	"golang.org/x/xerrors"
)

const latestMavenArchivesMethod = "getLatestMavenArchives"

// Archive is a maven archive of a build tagged in Koji.
type Archive struct {
	GroupID      string
	ArtifactID   string
	Version      string
	BuildName    string
	BuildVersion string
	BuildRelease string
	Filename     string
}

// Type returns the archive type derived from the file name, e.g. "jar".
func (a Archive) Type() string {
	i := strings.LastIndex(a.Filename, ".")
	if i < 0 {
		return ""
	}
	return a.Filename[i+1:]
}

// Client is a minimal XML-RPC client for the Koji hub.
type Client struct {
	http   *retryablehttp.Client
	url    string
	logger *slog.Logger
}

func NewClient(client *retryablehttp.Client, url string) *Client {
	return &Client{
		http:   client,
		url:    url,
		logger: slog.Default().With(slog.String("component", "koji")),
	}
}

// LatestMavenArchives returns archives of the latest builds tagged with the tag.
func (c *Client) LatestMavenArchives(ctx context.Context, tag string) ([]Archive, error) {
	c.logger.Info("Querying latest maven archives", slog.String("tag", tag))
	resp, err := c.call(ctx, latestMavenArchivesMethod, tag)
	if err != nil {
		return nil, xerrors.Errorf("%s error: %w", latestMavenArchivesMethod, err)
	}

	var archives []Archive
	for _, v := range resp.Array {
		m := v.members()
		archives = append(archives, Archive{
			GroupID:      m["group_id"],
			ArtifactID:   m["artifact_id"],
			Version:      m["version"],
			BuildName:    m["build_name"],
			BuildVersion: m["build_version"],
			BuildRelease: m["build_release"],
			Filename:     m["filename"],
		})
	}
	c.logger.Debug("Received archives", slog.Int("count", len(archives)))
	return archives, nil
}

func (c *Client) call(ctx context.Context, method string, params ...string) (value, error) {
	body, err := xml.Marshal(methodCall{
		MethodName: method,
		Params: lo.Map(params, func(p string, _ int) param {
			return param{Value: value{String: lo.ToPtr(p)}}
		}),
	})
	if err != nil {
		return value{}, xerrors.Errorf("unable to marshal a request: %w", err)
	}
	body = append([]byte(xml.Header), body...)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return value{}, xerrors.Errorf("unable to create a HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return value{}, xerrors.Errorf("http error (%s): %w", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return value{}, xerrors.Errorf("unexpected status %s (%s)", resp.Status, c.url)
	}

	var res methodResponse
	if err = xml.NewDecoder(resp.Body).Decode(&res); err != nil {
		return value{}, xerrors.Errorf("unable to decode a response: %w", err)
	}
	if res.Fault != nil {
		m := res.Fault.Value.members()
		return value{}, xerrors.Errorf("fault %s: %s", m["faultCode"], m["faultString"])
	}
	if len(res.Params) == 0 {
		return value{}, xerrors.New("empty response")
	}
	return res.Params[0].Value, nil
}
