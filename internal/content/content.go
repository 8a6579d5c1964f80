package content

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/publicsuffix"

	"github.com/baaaaaaaka/eledminer/internal/adminer"
)

// Page is what the content region currently shows.
type Page struct {
	URL    string `json:"url"`
	Status int    `json:"status"`
	Title  string `json:"title,omitempty"`
}

// Region holds the browsing state of the content region: its cookie jar and
// an HTTP client bound to it.
type Region struct {
	timeout time.Duration

	mu     sync.Mutex
	jar    *cookiejar.Jar
	client *http.Client
}

func NewRegion(timeout time.Duration) (*Region, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	r := &Region{timeout: timeout}
	if err := r.Reset(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reset discards every cookie, ending any attached session.
func (r *Region) Reset() error {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return fmt.Errorf("create cookie jar: %w", err)
	}
	client := &http.Client{
		Timeout: r.timeout,
		Jar:     jar,
		Transport: &http.Transport{
			Proxy: nil,
			DialContext: (&net.Dialer{
				Timeout: r.timeout,
			}).DialContext,
		},
	}
	r.mu.Lock()
	r.jar = jar
	r.client = client
	r.mu.Unlock()
	return nil
}

// Attach installs the session cookie for its scope URL.
func (r *Region) Attach(s adminer.Session) error {
	scope, err := url.Parse(s.CookieScopeURL)
	if err != nil || scope.Host == "" {
		return fmt.Errorf("invalid cookie scope %q", s.CookieScopeURL)
	}
	r.mu.Lock()
	jar := r.jar
	r.mu.Unlock()
	jar.SetCookies(scope, []*http.Cookie{s.Cookie()})
	return nil
}

// Cookies returns the cookies the region would send to rawURL.
func (r *Region) Cookies(rawURL string) []*http.Cookie {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	r.mu.Lock()
	jar := r.jar
	r.mu.Unlock()
	return jar.Cookies(u)
}

// Navigate loads target with the region's cookies. Redirects are followed.
func (r *Region) Navigate(ctx context.Context, target string) (Page, error) {
	r.mu.Lock()
	client := r.client
	r.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Page{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("load %s: %w", target, err)
	}
	defer resp.Body.Close()

	page := Page{URL: resp.Request.URL.String(), Status: resp.StatusCode}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return page, fmt.Errorf("load %s: unexpected status %s", target, resp.Status)
	}
	if strings.Contains(resp.Header.Get("Content-Type"), "html") || resp.Header.Get("Content-Type") == "" {
		page.Title = Title(io.LimitReader(resp.Body, 4<<20))
	}
	return page, nil
}

// Title returns the text of the first <title> element, whitespace-collapsed.
func Title(r io.Reader) string {
	z := html.NewTokenizer(r)
	inTitle := false
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == "title" {
				inTitle = true
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "title" && inTitle {
				return strings.Join(strings.Fields(b.String()), " ")
			}
		case html.TextToken:
			if inTitle {
				b.Write(z.Text())
			}
		}
	}
}
