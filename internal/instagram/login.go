package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linkgrab/linkgrab/internal/domain"
	"github.com/linkgrab/linkgrab/pkg/crypto"
)

// ensureSession returns a cookie jar for authenticated fetches: cached
// cookies from disk when present, a fresh login otherwise. A login failure
// is retried at most cfg.LoginRetries times with a fresh cookie file.
func (c *Client) ensureSession(ctx context.Context) (http.CookieJar, error) {
	if jar, err := c.loadCookies(); err == nil {
		c.logger.Info("instagram cookies loaded from cache")
		return jar, nil
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.LoginRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying instagram login", "attempt", attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(loginBackoff):
			}
		}

		jar, err := c.login(ctx)
		if err == nil {
			if err := c.saveCookies(jar); err != nil {
				c.logger.Warn("could not cache instagram cookies", "error", err)
			}
			return jar, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// login performs the session-cookie flow: fetch a CSRF token, then POST the
// login form with a timestamp-salted password encoding.
func (c *Client) login(ctx context.Context) (http.CookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	client := &http.Client{Jar: jar, Timeout: c.httpClient.Timeout}

	// First request seeds the jar with a csrftoken cookie.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("create csrf request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch csrf token: %w", err)
	}
	resp.Body.Close()

	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	var csrfToken string
	for _, cookie := range jar.Cookies(base) {
		if cookie.Name == "csrftoken" {
			csrfToken = cookie.Value
		}
	}
	if csrfToken == "" {
		return nil, fmt.Errorf("%w: no csrf token issued", domain.ErrLoginFailed)
	}

	// Signals the "Accept cookies" banner was dismissed.
	jar.SetCookies(base, []*http.Cookie{{Name: "ig_cb", Value: "2"}})

	encPassword := fmt.Sprintf("#PWD_INSTAGRAM_BROWSER:0:%d:%s", time.Now().Unix(), c.cfg.Password)
	form := url.Values{
		"username":     {c.cfg.Username},
		"enc_password": {encPassword},
	}

	loginReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/accounts/login/ajax/", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create login request: %w", err)
	}
	loginReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	loginReq.Header.Set("Referer", c.baseURL+"/")
	loginReq.Header.Set("User-Agent", c.userAgent)
	loginReq.Header.Set("X-CSRFToken", csrfToken)

	loginResp, err := client.Do(loginReq)
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	defer loginResp.Body.Close()

	var result struct {
		Authenticated bool `json:"authenticated"`
	}
	if err := json.NewDecoder(loginResp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if !result.Authenticated {
		return nil, domain.ErrLoginFailed
	}

	// The login response sets its cookies (sessionid among them) with the
	// login endpoint's path as the default scope. Re-home them at the site
	// root so later requests and the cookie cache see them.
	if cookies := loginResp.Cookies(); len(cookies) > 0 {
		jar.SetCookies(base, cookies)
	}

	c.logger.Info("instagram login succeeded")
	return jar, nil
}

// cookiePath returns the location of the cookie cache file.
func (c *Client) cookiePath() string {
	if c.cfg.CookiePath != "" {
		return c.cfg.CookiePath
	}
	return filepath.Join(c.baseDir, "cookies.txt")
}

// saveCookies serializes the jar's cookies as newline-delimited name=value
// lines, sealed with the configured secret when one is set.
func (c *Client) saveCookies(jar http.CookieJar) error {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}

	var sb strings.Builder
	for _, cookie := range jar.Cookies(base) {
		sb.WriteString(cookie.Name)
		sb.WriteByte('=')
		sb.WriteString(cookie.Value)
		sb.WriteByte('\n')
	}

	data := []byte(sb.String())
	if c.cfg.CookieSecret != "" {
		data, err = crypto.Seal(data, c.cfg.CookieSecret)
		if err != nil {
			return fmt.Errorf("seal cookies: %w", err)
		}
	}

	path := c.cookiePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create cookie dir: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// loadCookies reads the cached cookie file back into a jar.
func (c *Client) loadCookies() (http.CookieJar, error) {
	data, err := os.ReadFile(c.cookiePath())
	if err != nil {
		return nil, err
	}

	if c.cfg.CookieSecret != "" && crypto.IsSealed(data) {
		data, err = crypto.Open(data, c.cfg.CookieSecret)
		if err != nil {
			return nil, fmt.Errorf("open cookie cache: %w", err)
		}
	}

	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	var cookies []*http.Cookie
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: name, Value: value})
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("cookie cache is empty")
	}

	jar.SetCookies(base, cookies)
	return jar, nil
}

// ResetSession drops the cached cookie file, forcing a fresh login next time.
func (c *Client) ResetSession() error {
	err := os.Remove(c.cookiePath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
