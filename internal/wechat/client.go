// Package wechat wraps the WeChat mini-program server APIs used during
// login: code2session for openid exchange and the phone-number endpoint.
package wechat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/granary/granary/internal/shared"
)

const defaultBaseURL = "https://api.weixin.qq.com"

// ErrCodeRejected surfaces when WeChat refuses the login or phone code.
var ErrCodeRejected = shared.Safe("微信登录凭证无效，请重试")

// Client calls the WeChat server API with a cached access token.
type Client struct {
	appID   string
	secret  string
	baseURL string
	http    *http.Client
	now     func() time.Time

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient builds a Client. httpClient may be nil for a default with a
// 10 second timeout.
func NewClient(appID, secret string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		appID:   appID,
		secret:  secret,
		baseURL: defaultBaseURL,
		http:    httpClient,
		now:     time.Now,
	}
}

// Session is the code2session result.
type Session struct {
	OpenID     string `json:"openid"`
	SessionKey string `json:"session_key"`
	UnionID    string `json:"unionid"`
	ErrCode    int    `json:"errcode"`
	ErrMsg     string `json:"errmsg"`
}

// CodeToSession exchanges a wx.login code for the caller's openid.
func (c *Client) CodeToSession(ctx context.Context, code string) (*Session, error) {
	endpoint := fmt.Sprintf("%s/sns/jscode2session?appid=%s&secret=%s&js_code=%s&grant_type=authorization_code",
		c.baseURL, url.QueryEscape(c.appID), url.QueryEscape(c.secret), url.QueryEscape(code))

	var session Session
	if err := c.getJSON(ctx, endpoint, &session); err != nil {
		return nil, err
	}
	if session.ErrCode != 0 || session.OpenID == "" {
		return nil, ErrCodeRejected
	}
	return &session, nil
}

type phoneResponse struct {
	ErrCode   int    `json:"errcode"`
	ErrMsg    string `json:"errmsg"`
	PhoneInfo struct {
		PhoneNumber     string `json:"phoneNumber"`
		PurePhoneNumber string `json:"purePhoneNumber"`
		CountryCode     string `json:"countryCode"`
	} `json:"phone_info"`
}

// GetPhoneNumber resolves a phone-number button code to the bound phone.
func (c *Client) GetPhoneNumber(ctx context.Context, code string) (string, error) {
	token, err := c.ensureAccessToken(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return "", err
	}
	endpoint := fmt.Sprintf("%s/wxa/business/getuserphonenumber?access_token=%s", c.baseURL, url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("wechat: get phone number: %w", err)
	}
	defer resp.Body.Close()

	var parsed phoneResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("wechat: decode phone response: %w", err)
	}
	if parsed.ErrCode != 0 || parsed.PhoneInfo.PurePhoneNumber == "" {
		return "", ErrCodeRejected
	}
	return parsed.PhoneInfo.PurePhoneNumber, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	ErrCode     int    `json:"errcode"`
	ErrMsg      string `json:"errmsg"`
}

// ensureAccessToken returns a cached token, refreshing it five minutes
// before expiry.
func (c *Client) ensureAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.tokenExpiry.Add(-5*time.Minute)) {
		return c.accessToken, nil
	}

	endpoint := fmt.Sprintf("%s/cgi-bin/token?grant_type=client_credential&appid=%s&secret=%s",
		c.baseURL, url.QueryEscape(c.appID), url.QueryEscape(c.secret))

	var parsed tokenResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return "", err
	}
	if parsed.ErrCode != 0 || parsed.AccessToken == "" {
		return "", fmt.Errorf("wechat: access token rejected: %d %s", parsed.ErrCode, parsed.ErrMsg)
	}
	c.accessToken = parsed.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(parsed.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("wechat: call api: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("wechat: decode response: %w", err)
	}
	return nil
}
