package adminer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/baaaaaaaka/eledminer/internal/config"
)

// SessionCookie is the cookie Adminer issues after a successful login.
const SessionCookie = "adminer_sid"

// FilePassword is submitted for file-based drivers. The served Adminer accepts
// it through its password-less login plugin.
const FilePassword = "dummy"

var (
	ErrAuthRejected      = errors.New("adminer rejected the credentials")
	ErrProtocolViolation = errors.New("adminer login response is malformed")
	ErrSessionInvalid    = errors.New("adminer session is not valid")
	ErrNetwork           = errors.New("adminer is unreachable")
)

type Credentials struct {
	Driver   config.Driver
	Server   string
	Username string
	Password string
	DB       string
}

func CredentialsFor(conn config.Connection) Credentials {
	if conn.Driver.Kind() == config.FileBased {
		return Credentials{Driver: conn.Driver, Password: FilePassword, DB: conn.Filepath}
	}
	server := conn.Hostname
	if conn.Port > 0 {
		server = net.JoinHostPort(conn.Hostname, strconv.Itoa(conn.Port))
	}
	return Credentials{
		Driver:   conn.Driver,
		Server:   server,
		Username: conn.Username,
		Password: conn.Password,
	}
}

// Form encodes the auth[...] fields for the driver kind.
func (c Credentials) Form() url.Values {
	v := url.Values{}
	v.Set("auth[driver]", string(c.Driver))
	if c.Driver.Kind() == config.FileBased {
		v.Set("auth[username]", "")
		v.Set("auth[password]", c.Password)
		v.Set("auth[db]", c.DB)
		return v
	}
	v.Set("auth[server]", c.Server)
	v.Set("auth[username]", c.Username)
	v.Set("auth[password]", c.Password)
	return v
}

type Session struct {
	CookieName     string `json:"cookieName"`
	CookieValue    string `json:"cookieValue"`
	CookieScopeURL string `json:"cookieScopeUrl"`
	RedirectURL    string `json:"redirectUrl"`
}

func (s Session) Cookie() *http.Cookie {
	return &http.Cookie{Name: s.CookieName, Value: s.CookieValue, Path: "/"}
}

type Client struct {
	HTTP *http.Client
}

// NewClient returns a client that never follows redirects and never uses a
// proxy; the server is always on loopback.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{HTTP: &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: nil,
			DialContext: (&net.Dialer{
				Timeout: timeout,
			}).DialContext,
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

// Login submits creds to baseURL. Only a 302 that sets adminer_sid and names a
// Location is a success.
func (c *Client) Login(ctx context.Context, baseURL string, creds Credentials) (Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL, strings.NewReader(creds.Form().Encode()))
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer drain(resp.Body)

	if resp.StatusCode != http.StatusFound {
		return Session{}, fmt.Errorf("%w: status %d", ErrAuthRejected, resp.StatusCode)
	}

	token, ok := sessionToken(resp)
	if !ok {
		return Session{}, fmt.Errorf("%w: no %s cookie", ErrProtocolViolation, SessionCookie)
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return Session{}, fmt.Errorf("%w: no Location header", ErrProtocolViolation)
	}

	return Session{
		CookieName:     SessionCookie,
		CookieValue:    token,
		CookieScopeURL: baseURL,
		RedirectURL:    redirectURL(baseURL, location),
	}, nil
}

// Validate requests the redirect target with the session cookie; only 200
// proves the session.
func (c *Client) Validate(ctx context.Context, s Session) (Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.RedirectURL, nil)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	req.Header.Set("Cookie", (&http.Cookie{Name: s.CookieName, Value: s.CookieValue}).String())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer drain(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return Session{}, fmt.Errorf("%w: status %d", ErrSessionInvalid, resp.StatusCode)
	}
	return s, nil
}

// sessionToken parses every Set-Cookie header with the cookie grammar and
// returns the first non-empty adminer_sid.
func sessionToken(resp *http.Response) (string, bool) {
	for _, ck := range resp.Cookies() {
		if ck.Name == SessionCookie && ck.Value != "" {
			return ck.Value, true
		}
	}
	return "", false
}

func redirectURL(baseURL, location string) string {
	if u, err := url.Parse(location); err == nil && u.IsAbs() {
		return location
	}
	return baseURL + location
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 1<<20))
	_ = body.Close()
}
