package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"net/textproto"
	"strings"
)

// ErrorKind 区分请求在哪个阶段失败
type ErrorKind int

const (
	KindRequest  ErrorKind = iota + 1 // 构造请求失败
	KindConnect                       // 无法建立连接或传输中断
	KindProtocol                      // 网关返回了不合规范的 HTTP 报文
	KindStatus                        // 网关返回了错误状态码
	KindRead                          // 读取响应体失败
)

func (k ErrorKind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindConnect:
		return "connect"
	case KindProtocol:
		return "protocol"
	case KindStatus:
		return "status"
	case KindRead:
		return "read"
	default:
		return "unknown"
	}
}

// Error 描述一次网关交互中的失败
type Error struct {
	Op     string
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "gateway error"
	}
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf 取出错误的阶段，非 *Error 返回 0
func KindOf(err error) ErrorKind {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	return 0
}

// isProtocolAnomaly 判断传输层错误是否来自报文格式异常。
// net/http 对状态行格式错误返回的是未导出类型，只能退回到匹配错误文本。
func isProtocolAnomaly(err error) bool {
	if err == nil {
		return false
	}
	var mimeErr textproto.ProtocolError
	if errors.As(err, &mimeErr) {
		return true
	}
	var httpErr *http.ProtocolError
	if errors.As(err, &httpErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "malformed HTTP") || strings.Contains(msg, "malformed MIME header")
}

func transportErrorKind(err error) ErrorKind {
	if isProtocolAnomaly(err) {
		return KindProtocol
	}
	return KindConnect
}
