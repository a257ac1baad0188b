package websearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/huyvu15/Agentic-search-company/internal/common/errors"
	"github.com/huyvu15/Agentic-search-company/internal/common/httpclient"
)

type FetchConfig struct {
	Timeout  time.Duration
	MaxBytes int
}

// Fetcher downloads a page and reduces it to plain text. Each fetch is bound
// by the configured per-page timeout.
type Fetcher struct {
	timeout  time.Duration
	maxBytes int
	client   httpclient.Doer
}

func NewFetcher(cfg FetchConfig) *Fetcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	maxBytes := cfg.MaxBytes
	if maxBytes == 0 {
		maxBytes = 32 * 1024
	}
	return &Fetcher{
		timeout:  timeout,
		maxBytes: maxBytes,
		client:   httpclient.New(timeout),
	}
}

// WithDoer replaces the underlying HTTP client. Used by tests.
func (f *Fetcher) WithDoer(doer httpclient.Doer) *Fetcher {
	f.client = doer
	return f
}

// Fetch downloads the URL, strips markup to plain text, and truncates to the
// configured byte limit.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return "", errors.New("fetch url is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trimmed, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", apperrors.NewFetchTimeoutError(trimmed)
		}
		return "", apperrors.NewFetchError(trimmed, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewFetchError(trimmed, fmt.Sprintf("http %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewFetchError(trimmed, err.Error())
	}

	text := stripHTML(string(body))
	if len(text) > f.maxBytes {
		cut := f.maxBytes
		// Back up so the cut never splits a multi-byte sequence.
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text, nil
}

var (
	reScript     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	reStyle      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	reNav        = regexp.MustCompile(`(?is)<nav[^>]*>.*?</nav>`)
	reHeader     = regexp.MustCompile(`(?is)<header[^>]*>.*?</header>`)
	reFooter     = regexp.MustCompile(`(?is)<footer[^>]*>.*?</footer>`)
	reTags       = regexp.MustCompile(`<[^>]+>`)
	reWhitespace = regexp.MustCompile(`[ \t]+`)
	reBlankLines = regexp.MustCompile(`\n{3,}`)
)

// stripHTML removes scripts, styles, nav/header/footer, then all tags.
func stripHTML(html string) string {
	s := reScript.ReplaceAllString(html, "")
	s = reStyle.ReplaceAllString(s, "")
	s = reNav.ReplaceAllString(s, "")
	s = reHeader.ReplaceAllString(s, "")
	s = reFooter.ReplaceAllString(s, "")
	s = reTags.ReplaceAllString(s, " ")

	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", "\"")
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = strings.ReplaceAll(s, "&nbsp;", " ")

	s = reWhitespace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	var out []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	s = strings.Join(out, "\n")
	s = reBlankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
