package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.twilio.com"

var ErrMissingCredentials = errors.New("twilio: 缺少账号凭证")

// Client Twilio 短信网关客户端
type Client struct {
	baseURL     string
	accountSID  string
	authToken   string
	fromNumber  string
	countryCode string // 无 + 前缀手机号补的国家码
	client      *http.Client
}

func NewClient(baseURL, accountSID, authToken, fromNumber, countryCode string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if countryCode == "" {
		countryCode = "+91"
	}
	return &Client{
		baseURL:     baseURL,
		accountSID:  accountSID,
		authToken:   authToken,
		fromNumber:  fromNumber,
		countryCode: countryCode,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// HasCredentials 三个凭证是否齐全
func (c *Client) HasCredentials() bool {
	return c.accountSID != "" && c.authToken != "" && c.fromNumber != ""
}

// NormalizePhone 手机号归一化成国际格式
// 已带 + 前缀的原样返回，否则补上配置的国家码
func (c *Client) NormalizePhone(phone string) string {
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return c.countryCode + phone
}

// APIError 网关返回非 2xx 时的错误，保留响应体透传给调用方
type APIError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twilio: 网关返回 %d: %s", e.StatusCode, string(e.Body))
}

type sendResponse struct {
	SID string `json:"sid"`
}

// SendSMS 发送一条短信，返回网关消息ID
// Twilio 走 Basic Auth + 表单编码，这里不做重试，由调用方决定
func (c *Client) SendSMS(ctx context.Context, toPhone, body string) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingCredentials
	}

	form := url.Values{}
	form.Set("To", c.NormalizePhone(toPhone))
	form.Set("From", c.fromNumber)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio: 发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: respBody}
	}

	out := sendResponse{}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", err
	}
	return out.SID, nil
}
