package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"logmein/internal/status"
	log "logmein/pkg/logger"
)

const (
	// DefaultBaseURL Aruba 网关的登录地址
	DefaultBaseURL = "https://securelogin.arubanetworks.com/cgi-bin/login"

	// DefaultTimeout 单次请求的超时时间
	DefaultTimeout = 15 * time.Second

	cmdLogin  = "login"
	cmdLogout = "logout"

	formContentType = "application/x-www-form-urlencoded"
)

// Client 负责与网关的一次请求/响应交互并对结果分类。
// 构造后只读，可被多个 goroutine 共享。
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
}

// Options 允许覆盖客户端依赖
type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
}

// New 创建网关客户端
func New(baseURL string, opts Options) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is empty")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse baseURL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: parsed, httpClient: client, userAgent: opts.UserAgent}, nil
}

var (
	defaultOnce   sync.Once
	defaultClient *Client
)

// Default 返回指向 DefaultBaseURL 的进程级客户端，只构造一次
func Default() *Client {
	defaultOnce.Do(func() {
		client, err := New(DefaultBaseURL, Options{})
		if err != nil {
			panic("gateway: invalid default base url: " + err.Error())
		}
		defaultClient = client
	})
	return defaultClient
}

// BaseURL 返回网关地址
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Login 提交凭据并返回分类结果，不会返回错误：
// 所有失败都折算为 status.Code。
func (c *Client) Login(ctx context.Context, creds *Credentials) status.Code {
	const op = "Login"
	if err := creds.Validate(); err != nil {
		log.Warn("登录凭据不完整，未发送请求", zap.Error(err))
		return status.CredentialsMissing
	}

	code, err := c.exchange(ctx, op, http.MethodPost, cmdLogin, strings.NewReader(creds.formBody()), loginRules)
	if err == nil {
		if !code.Determined() {
			log.Warn("登录响应未命中任何标记", zap.String("username", creds.Username))
		}
		return code
	}

	// 网关在部分成功登录后会返回不合规范的 HTTP 报文，沿用旧行为视为已登录。
	// 这只是经验规则，并非协议保证。
	if KindOf(err) == KindProtocol {
		log.Warn("登录响应报文异常，按已登录处理",
			zap.String("username", creds.Username),
			zap.Error(err))
		return status.LoggedIn
	}
	return resolve(code, err)
}

// Logout 注销当前会话
func (c *Client) Logout(ctx context.Context) status.Code {
	const op = "Logout"
	code, err := c.exchange(ctx, op, http.MethodGet, cmdLogout, nil, logoutRules)
	if err == nil {
		if !code.Determined() {
			log.Warn("登出响应未命中任何标记")
		}
		return code
	}
	return resolve(code, err)
}

// resolve 把交互错误折算为结果码
func resolve(determined status.Code, err error) status.Code {
	switch KindOf(err) {
	case KindConnect, KindRequest:
		log.Error("无法连接网关", zap.Error(err))
		return status.ConnectionError
	default:
		log.Error("网关交互失败", zap.Error(err), zap.String("determined", determined.String()))
		return determined
	}
}

func (c *Client) exchange(ctx context.Context, op, method, cmd string, body io.Reader, rules []Rule) (status.Code, error) {
	target := c.commandURL(cmd)
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return status.None, &Error{Op: op, Kind: KindRequest, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", formContentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return status.None, &Error{Op: op, Kind: transportErrorKind(err), Err: err}
	}
	defer resp.Body.Close()

	log.Debug("网关已响应",
		zap.String("op", op),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode >= http.StatusBadRequest {
		return status.None, &Error{Op: op, Kind: KindStatus, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	code, err := Classify(resp.Body, rules)
	if err != nil {
		kind := KindRead
		if isProtocolAnomaly(err) {
			kind = KindProtocol
		}
		return code, &Error{Op: op, Kind: kind, Status: resp.StatusCode, Err: err}
	}
	return code, nil
}

// commandURL 在网关地址后追加 cmd 参数
func (c *Client) commandURL(cmd string) string {
	u := *c.baseURL
	if u.RawQuery == "" {
		u.RawQuery = "cmd=" + cmd
	} else {
		u.RawQuery += "&cmd=" + cmd
	}
	return u.String()
}
