package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"

	tls2 "github.com/refraction-networking/utls"

	"github.com/use-agent/expograb/config"
	"github.com/use-agent/expograb/models"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// httpFetcher is the last acquisition tier: a plain HTTP request to the
// listing endpoint with a Chrome TLS fingerprint, used when both the DOM
// path and the in-context fetch come up empty (typically because the
// page context itself is wedged). It shares nothing with the browser
// session beyond the user agent, so it can still succeed after the
// rendered page has stopped responding.
type httpFetcher struct {
	origin string // scheme://host of the listing page
	proxy  string
}

// newHTTPFetcher derives the endpoint origin from the listing base URL.
func newHTTPFetcher(baseURL, proxy string) (*httpFetcher, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("httpfetch: parse base URL: %w", err)
	}
	return &httpFetcher{origin: u.Scheme + "://" + u.Host, proxy: proxy}, nil
}

// fetchPage retrieves and parses one listing page, zero-indexed. All
// failures are reported as an empty result; this tier is best-effort.
func (f *httpFetcher) fetchPage(ctx context.Context, t config.TargetConfig, pageZero int) []models.Exhibitor {
	body, err := f.fetch(ctx, f.origin+listQuery(t, pageZero))
	if err != nil {
		slog.Warn("direct fetch failed", "page", pageZero+1, "error", err)
		return nil
	}
	fragment := string(body)
	if !fragmentHasRows(fragment, t.RowClass) {
		slog.Debug("direct fetch returned no data rows", "page", pageZero+1)
		return nil
	}

	records := parseRows(fragment, t)
	if len(records) > 0 {
		slog.Info("records recovered via direct fetch",
			"page", pageZero+1, "records", len(records))
	}
	return records
}

// fetch retrieves the URL via plain HTTP with a Chrome TLS fingerprint.
func (f *httpFetcher) fetch(ctx context.Context, targetURL string) ([]byte, error) {
	transport := &http.Transport{
		DialTLSContext: dialTLSChrome,
	}
	if f.proxy != "" {
		if proxyURL, err := url.Parse(f.proxy); err == nil && (proxyURL.Scheme == "http" || proxyURL.Scheme == "https") {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	client := &http.Client{Transport: transport}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("httpfetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Referer", f.origin+"/")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpfetch: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("httpfetch: HTTP %d for %s", resp.StatusCode, targetURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024)) // 10 MB cap
	if err != nil {
		return nil, fmt.Errorf("httpfetch: read body: %w", err)
	}
	return body, nil
}

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint via utls.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls2.UClient(rawConn, &tls2.Config{
		ServerName: host,
	}, tls2.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}
