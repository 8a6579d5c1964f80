package phpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

type HealthClient struct {
	Timeout time.Duration
}

type Health struct {
	Status    int    `json:"status"`
	PoweredBy string `json:"poweredBy,omitempty"`
}

// Check requests baseURL without following redirects. Any response carrying
// the X-Powered-By header that expose_php=1 enables counts as healthy.
func (c HealthClient) Check(ctx context.Context, baseURL string) (Health, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 1 * time.Second
	}

	client := &http.Client{
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
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return Health{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return Health{}, err
	}
	defer resp.Body.Close()

	h := Health{Status: resp.StatusCode, PoweredBy: resp.Header.Get("X-Powered-By")}
	if !strings.HasPrefix(h.PoweredBy, "PHP/") {
		return h, fmt.Errorf("unexpected responder %q (status %d)", h.PoweredBy, h.Status)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return h, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return h, nil
}

// Check probes the running server.
func (m *Manager) Check(ctx context.Context) (Health, error) {
	if err := m.Require(); err != nil {
		return Health{}, err
	}
	return HealthClient{}.Check(ctx, m.BaseURL()+"/")
}
