package gateway

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"go.uber.org/zap"

	"logmein/internal/status"
	log "logmein/pkg/logger"
)

// 网关页面中的识别标记
const (
	MarkerWelcome     = "External Welcome Page"
	MarkerAuthFailed  = "Authentication failed"
	MarkerOneSession  = "Only one user login session is allowed"
	MarkerLogout      = "Logout"
	MarkerNotLoggedIn = "User not logged in"
)

// maxLineSize 单行最大长度，超过后按读取失败处理
const maxLineSize = 8 << 20

// Rule 一条识别规则：行内包含 Marker 即判定为 Code
type Rule struct {
	Marker string
	Code   status.Code
}

// 规则按优先级排列，同一行先匹配到的生效
var (
	loginRules = []Rule{
		{Marker: MarkerWelcome, Code: status.LoginSuccess},
		{Marker: MarkerAuthFailed, Code: status.AuthenticationFailed},
		{Marker: MarkerOneSession, Code: status.MultipleSessions},
	}
	logoutRules = []Rule{
		{Marker: MarkerLogout, Code: status.LogoutSuccess},
		{Marker: MarkerNotLoggedIn, Code: status.NotLoggedIn},
	}
)

// LoginRules 返回登录响应的识别规则副本
func LoginRules() []Rule {
	return append([]Rule(nil), loginRules...)
}

// LogoutRules 返回登出响应的识别规则副本
func LogoutRules() []Rule {
	return append([]Rule(nil), logoutRules...)
}

// ClassifyLogin 对已读取的登录响应行进行分类
func ClassifyLogin(lines []string) status.Code {
	return classifyLines(lines, loginRules)
}

// ClassifyLogout 对已读取的登出响应行进行分类
func ClassifyLogout(lines []string) status.Code {
	return classifyLines(lines, logoutRules)
}

func classifyLines(lines []string, rules []Rule) status.Code {
	for _, line := range lines {
		if code, ok := match(line, rules); ok {
			return code
		}
	}
	return status.None
}

// Classify 逐行读取 r，第一条命中规则的行决定结果并停止读取。
// 读到末尾仍未命中返回 status.None；读取出错时返回 None 和错误。
func Classify(r io.Reader, rules []Rule) (status.Code, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	scanner.Split(scanLines)
	for scanner.Scan() {
		line := scanner.Text()
		if code, ok := match(line, rules); ok {
			log.Debug("响应命中标记", zap.String("code", code.String()))
			return code, nil
		}
		log.Debug("html", zap.String("line", line))
	}
	return status.None, scanner.Err()
}

// scanLines 按 \n、\r 或 \r\n 切分行，部分网关页面只用 \r 换行
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		switch {
		case i+1 < len(data) && data[i+1] == '\n':
			return i + 2, data[:i], nil
		case i+1 < len(data) || atEOF:
			return i + 1, data[:i], nil
		}
		// \r 在缓冲区末尾，需要再读一个字节才能判断是否为 \r\n
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func match(line string, rules []Rule) (status.Code, bool) {
	for _, rule := range rules {
		if strings.Contains(line, rule.Marker) {
			return rule.Code, true
		}
	}
	return status.None, false
}
