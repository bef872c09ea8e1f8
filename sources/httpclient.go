package sources

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	tls "github.com/refraction-networking/utls"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// maxBody caps how much of a response is read.
const maxBody = 10 << 20

// Getter fetches a URL and returns its body.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// HTTPClient fetches pages over plain HTTP with a Chrome-like TLS
// fingerprint, which some storefronts require before serving markup.
type HTTPClient struct {
	client *http.Client
}

// chromeH1Spec is Chrome's ClientHello offering only http/1.1, since
// http.Transport cannot speak h2 over a utls connection. Nil when the
// preset could not be built.
var chromeH1Spec = http1ChromeSpec()

func http1ChromeSpec() *tls.ClientHelloSpec {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		slog.Warn("chrome tls preset unavailable, using default chrome hello", "error", err)
		return nil
	}
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
		}
	}
	return &spec
}

// uclient wraps conn in a Chrome-fingerprinted TLS client.
func uclient(conn net.Conn, host string) (*tls.UConn, error) {
	cfg := &tls.Config{ServerName: host}
	if chromeH1Spec == nil {
		return tls.UClient(conn, cfg, tls.HelloChrome_Auto), nil
	}
	u := tls.UClient(conn, cfg, tls.HelloCustom)
	if err := u.ApplyPreset(chromeH1Spec); err != nil {
		return nil, fmt.Errorf("httpclient: apply tls preset: %w", err)
	}
	return u, nil
}

// NewHTTPClient creates an HTTPClient whose requests give up after timeout.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn, err := uclient(conn, host)
			if err != nil {
				conn.Close()
				return nil, err
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
		IdleConnTimeout:   90 * time.Second,
	}
	return &HTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
	}
}

// Get issues a browser-like GET and returns the body. Status codes >= 400
// are errors.
func (c *HTTPClient) Get(ctx context.Context, targetURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: build request: %w", err)
	}
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-IN,en;q=0.9")
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("httpclient: HTTP %d for %s", resp.StatusCode, targetURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}
	return body, nil
}
