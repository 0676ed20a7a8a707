// Package verify provides deployment verification for exported posts:
// verification-code generation, HTML marker embedding/extraction, and
// URL-liveness classification.
package verify

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the liveness GET timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for verification requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; PublishAgent/1.0)"

// CodeLength is the length of generated verification codes.
const CodeLength = 8

// codeCharset is lowercase alphanumerics; 36^8 combinations is plenty for a
// single project's post count.
const codeCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// markerRe matches the canonical verification marker comment.
var markerRe = regexp.MustCompile(`<!--\s*mktdept-verify:([a-zA-Z0-9]+)\s*-->`)

// Result classifies the outcome of a liveness check. A warning is still a
// success: the URL is reachable, confidence in its freshness is reduced.
type Result struct {
	Success    bool
	Warning    bool
	Message    string
	StatusCode int
}

// Service performs URL verification. The zero value is not usable; call
// NewService.
type Service struct {
	client    *http.Client
	userAgent string
}

// Option configures a Service.
type Option func(*Service)

// WithHTTPClient overrides the HTTP client used for liveness checks.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) { s.client = c }
}

// NewService creates a verification service with the default timeout. The
// client stops at the first redirect: a deployed URL must resolve directly,
// so a 3xx is classified as a failure rather than followed.
func NewService(opts ...Option) *Service {
	s := &Service{
		client: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateCode returns an 8-character lowercase-alphanumeric verification
// code drawn from a cryptographically secure random source.
func GenerateCode() (string, error) {
	var sb strings.Builder
	sb.Grow(CodeLength)
	max := big.NewInt(int64(len(codeCharset)))
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate verification code: %w", err)
		}
		sb.WriteByte(codeCharset[n.Int64()])
	}
	return sb.String(), nil
}

// Marker returns the canonical HTML comment the web-export stage must inject
// into generated pages.
func Marker(code string) string {
	return fmt.Sprintf("<!-- mktdept-verify:%s -->", code)
}

// ExtractCode returns the first verification code found in the HTML, or ""
// when no marker is present.
func ExtractCode(html string) string {
	m := markerRe.FindStringSubmatch(html)
	if m == nil {
		return ""
	}
	return m[1]
}

// BuildFullURL joins the configured web base URL (normalized to end with "/")
// with a post URI, stripping a single leading "/" from the URI. A blank base
// returns "": the caller must treat that as "web publishing not configured".
func BuildFullURL(base, uri string) string {
	if strings.TrimSpace(base) == "" {
		return ""
	}
	return base + strings.TrimPrefix(uri, "/")
}

// Verify performs a liveness GET against url and classifies the response.
// Network failures and malformed URLs are converted to failed Results; this
// method never returns an error to the caller.
func (s *Service) Verify(ctx context.Context, url, expectedCode string, requireCodeMatch bool) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{Message: fmt.Sprintf("invalid URL %s: %v", url, err)}
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("failed to read response body: %v", err),
		}
	}

	return classify(resp.StatusCode, string(body), expectedCode, requireCodeMatch)
}

// classify applies the verification decision table to a completed response.
func classify(statusCode int, body, expectedCode string, requireCodeMatch bool) Result {
	switch {
	case statusCode >= 400:
		return Result{
			StatusCode: statusCode,
			Message:    fmt.Sprintf("URL returned HTTP %d", statusCode),
		}
	case statusCode >= 300:
		// The deployed URL is expected to resolve directly.
		return Result{
			StatusCode: statusCode,
			Message:    fmt.Sprintf("unexpected redirect (HTTP %d)", statusCode),
		}
	}

	if expectedCode == "" || !requireCodeMatch {
		return Result{
			Success:    true,
			StatusCode: statusCode,
			Message:    "URL is live" + pageSuffix(body),
		}
	}

	found := ExtractCode(body)
	switch {
	case found == "":
		return Result{
			Success:    true,
			Warning:    true,
			StatusCode: statusCode,
			Message:    "URL is live but no verification code found in page content",
		}
	case found != expectedCode:
		return Result{
			Success:    true,
			Warning:    true,
			StatusCode: statusCode,
			Message: fmt.Sprintf("URL is live but content may be stale: expected code %s, found %s",
				expectedCode, found),
		}
	default:
		return Result{
			Success:    true,
			StatusCode: statusCode,
			Message:    "verification code matches" + pageSuffix(body),
		}
	}
}

// pageSuffix extracts the page title for friendlier messages. Parsing
// failures are ignored; the title is cosmetic.
func pageSuffix(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return ""
	}
	return fmt.Sprintf(" (page: %s)", title)
}
