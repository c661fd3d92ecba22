package network

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	fhttp "github.com/bogdanfinn/fhttp"
	fhttpcookiejar "github.com/bogdanfinn/fhttp/cookiejar"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/net/html/charset"

	"github.com/MrJJimenez/jobfeed/internal/models"
)

const (
	DefaultTimeout     = 40 * time.Second
	DefaultUserAgent   = "jobfeed/3.0"
	DefaultBanDuration = 5 * time.Minute
)

var (
	ErrRequestFailed = errors.New("request failed")
	ErrNonText       = errors.New("non-text response")
)

var gzipMagic = []byte{0x1f, 0x8b}

// Client fetches remote documents as UTF-8 text. With a rotator each
// request goes through its own per-proxy transport, so concurrent requests
// never share a proxy setting.
type Client struct {
	rotator   *Rotator
	userAgent string
	newHTTP   func(proxy string) (doer, error)

	mu      sync.Mutex
	direct  doer
	proxied map[string]doer
}

// doer is the slice of tls_client.HttpClient the fetcher needs.
type doer interface {
	Do(req *fhttp.Request) (*fhttp.Response, error)
}

// NewClient builds a fetcher. When rotator is nil and cfg lists proxies, a
// rotator over cfg.Proxies is created.
func NewClient(cfg models.FetchConfig, rotator *Rotator) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if rotator == nil && len(cfg.Proxies) > 0 {
		var err error
		rotator, err = NewRotator(cfg.Proxies, DefaultBanDuration)
		if err != nil {
			return nil, err
		}
	}

	newHTTP := func(proxy string) (doer, error) {
		jar, _ := fhttpcookiejar.New(nil)
		options := []tls_client.HttpClientOption{
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithTimeoutSeconds(int(timeout.Seconds())),
			tls_client.WithCookieJar(jar),
		}
		if proxy != "" {
			options = append(options, tls_client.WithProxyUrl(proxy))
		}
		return tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	}

	return newClient(rotator, userAgent, newHTTP)
}

func newClient(rotator *Rotator, userAgent string, newHTTP func(proxy string) (doer, error)) (*Client, error) {
	client := &Client{
		rotator:   rotator,
		userAgent: userAgent,
		newHTTP:   newHTTP,
		proxied:   map[string]doer{},
	}
	if rotator == nil {
		direct, err := newHTTP("")
		if err != nil {
			return nil, err
		}
		client.direct = direct
	}
	return client, nil
}

// Fetch downloads target and returns its body decoded to UTF-8.
func (c *Client) Fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRequestFailed, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: %s: http %d", ErrRequestFailed, target, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isTextual(contentType) {
		return nil, fmt.Errorf("%w: %s: %s", ErrNonText, target, contentType)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRequestFailed, target, err)
	}
	return decodeBody(raw, contentType)
}

// Do sends req directly or through the next usable proxy. A 403 or 429
// benches the proxy that served it. It fails with ErrNoProxies when every
// proxy is benched.
func (c *Client) Do(req *fhttp.Request) (*fhttp.Response, error) {
	if c.rotator == nil {
		return c.direct.Do(req)
	}

	proxy, err := c.rotator.Next()
	if err != nil {
		return nil, err
	}
	httpClient, err := c.proxyClient(proxy.String())
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	c.rotator.Report(proxy, resp.StatusCode)
	return resp, nil
}

func (c *Client) proxyClient(proxy string) (doer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if httpClient, ok := c.proxied[proxy]; ok {
		return httpClient, nil
	}
	httpClient, err := c.newHTTP(proxy)
	if err != nil {
		return nil, err
	}
	c.proxied[proxy] = httpClient
	return httpClient, nil
}

// decodeBody inflates gzip payloads served without a Content-Encoding header
// and converts the declared or sniffed charset to UTF-8. Undeclared bodies
// that are valid UTF-8 are returned as is.
func decodeBody(raw []byte, contentType string) ([]byte, error) {
	if bytes.HasPrefix(raw, gzipMagic) {
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		raw, err = io.ReadAll(zr)
		if err != nil {
			return nil, err
		}
	}

	// A guessed encoding never overrides a body that is already valid UTF-8.
	encoding, _, certain := charset.DetermineEncoding(raw, contentType)
	if !certain && utf8.Valid(raw) {
		return raw, nil
	}
	decoded, err := encoding.NewDecoder().Bytes(raw)
	if err != nil {
		return bytes.ToValidUTF8(raw, []byte("\uFFFD")), nil
	}
	return bytes.ToValidUTF8(decoded, []byte("\uFFFD")), nil
}

func isTextual(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return true
	}
	if strings.HasPrefix(mediaType, "text/") {
		return true
	}
	switch mediaType {
	case "application/xml", "application/rss+xml", "application/atom+xml",
		"application/xhtml+xml", "application/json", "application/ld+json":
		return true
	}
	return false
}
