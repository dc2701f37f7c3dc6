package source

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	userAgent       = "jobsift/1.0 (+https://github.com/jobsift/jobsift)"
	contentEncoding = "gzip, deflate"
)

// Client is the HTTP client shared by all source implementations. It owns the
// common request plumbing: headers, gzip responses and payload decoding.
type Client struct {
	httpClient *http.Client
	token      string
	logger     *zap.Logger
}

func NewClient(logger *zap.Logger, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		token:  token,
		logger: logger,
	}
}

// getJSON fetches rawURL and decodes the response body into target. The body
// is parsed as untyped JSON first and then mapped onto target, so sources
// tolerate loosely typed payloads (numeric ids, missing fields).
func (c *Client) getJSON(ctx context.Context, rawURL string, q url.Values, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	c.setHeaders(req)
	req.Header.Set("Accept", "application/json")
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	body, err := c.request(req)
	if err != nil {
		return err
	}

	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("decoding response from %s: %w", req.URL.Host, err)
	}

	return decodePayload(payload, target)
}

// getHTML fetches rawURL and parses the response as a document.
func (c *Client) getHTML(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	c.setHeaders(req)
	req.Header.Set("Accept", "text/html")

	body, err := c.request(req)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parsing page from %s: %w", req.URL.Host, err)
	}
	return doc, nil
}

func (c *Client) request(req *http.Request) ([]byte, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	return body, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
}

func decodePayload(payload, target interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(payload); err != nil {
		return fmt.Errorf("mapping response payload: %w", err)
	}
	return nil
}

var htmlLineBreaks = strings.NewReplacer(
	"<p>", "\n", "<P>", "\n",
	"<br>", "\n", "<br/>", "\n", "<br />", "\n",
	"<li>", "\n- ",
)

// stripHTML flattens an HTML fragment to plain text, keeping paragraph and
// list-item boundaries as line breaks so downstream extraction can still see
// line structure.
func stripHTML(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlLineBreaks.Replace(fragment)))
	if err != nil {
		return fragment
	}
	return strings.TrimSpace(doc.Text())
}
