package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"logmein/internal/status"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// OutcomeData 网关操作结果
type OutcomeData struct {
	TaskID string `json:"task_id,omitempty"`
	Status string `json:"status"`
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "OK",
		Data:    data,
	})
}

// Outcome 返回网关操作结果，message 为面向用户的提示文案
func Outcome(c *gin.Context, taskID string, code status.Code) {
	c.JSON(outcomeHTTPStatus(code), Response{
		Code:    FromStatus(code),
		Message: status.Describe(code),
		Data:    OutcomeData{TaskID: taskID, Status: code.String()},
	})
}

// Error 返回错误响应
func Error(c *gin.Context, code int, message string) {
	if message == "" {
		message = GetMessage(code)
	}
	c.JSON(getHTTPStatus(code), Response{
		Code:    code,
		Message: message,
	})
}

// AbortWithError 返回错误响应并中止后续处理
func AbortWithError(c *gin.Context, code int, message string) {
	Error(c, code, message)
	c.Abort()
}

// outcomeHTTPStatus 网关的业务结果都返回 200，只有参数缺失和连不上网关例外
func outcomeHTTPStatus(code status.Code) int {
	switch code {
	case status.CredentialsMissing:
		return http.StatusBadRequest
	case status.ConnectionError:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}

// getHTTPStatus 根据业务错误码获取HTTP状态码
func getHTTPStatus(code int) int {
	switch {
	case code == CodeSuccess:
		return http.StatusOK
	case code >= CodeBadRequest && code < CodeAuthenticationFailed:
		return http.StatusBadRequest
	case code >= CodeAuthenticationFailed && code < CodeMultipleSessions:
		return http.StatusUnauthorized
	case code >= CodeMultipleSessions && code < CodeTooManyRequests:
		return http.StatusConflict
	case code >= CodeTooManyRequests && code < CodeInternalServerError:
		return http.StatusTooManyRequests
	case code >= CodeGatewayUnreachable:
		return http.StatusBadGateway
	case code >= CodeInternalServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}
