// Package response 提供统一的 HTTP 响应格式
// 参考数据接口使用 {code, message, data} 结构；
// 对话转发接口与原始前端约定，失败时只返回 {error}
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
// code: 业务状态码（0 表示成功）
// message: 提示信息
// data: 响应数据
type Response struct {
	Code    int         `json:"code"`           // 业务状态码
	Message string      `json:"message"`        // 提示信息
	Data    interface{} `json:"data,omitempty"` // 响应数据，可选
}

// ErrorBody 对话接口的错误响应
// error 字段是固定的、可供程序判断的错误描述，不包含上游细节
type ErrorBody struct {
	Error string `json:"error"`
}

// 业务状态码定义
const (
	CodeSuccess         = 0    // 成功
	CodeBadRequest      = 1000 // 请求参数错误
	CodeNotFound        = 1003 // 资源不存在
	CodeInternalError   = 1004 // 服务器内部错误
	CodeUnknownCategory = 1501 // 数据分类不存在
)

// Success 返回成功响应
// 参数:
//   - c: Gin 上下文
//   - data: 响应数据，可以是任意类型
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// ErrorWithCode 返回错误响应（带业务状态码）
// 参数:
//   - c: Gin 上下文
//   - httpCode: HTTP 状态码
//   - bizCode: 业务状态码
//   - message: 错误信息
func ErrorWithCode(c *gin.Context, httpCode, bizCode int, message string) {
	c.JSON(httpCode, Response{
		Code:    bizCode,
		Message: message,
	})
}

// BadRequest 返回 400 错误（请求参数错误）
func BadRequest(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusBadRequest, CodeBadRequest, message)
}

// UnknownCategory 返回数据分类不存在错误
func UnknownCategory(c *gin.Context, category string) {
	ErrorWithCode(c, http.StatusBadRequest, CodeUnknownCategory, "未知的數據分類: "+category)
}

// Fail 返回 {error} 格式的错误响应
// 参数:
//   - c: Gin 上下文
//   - httpCode: HTTP 状态码
//   - message: 固定的错误描述
func Fail(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, ErrorBody{Error: message})
}

// AbortFail 与 Fail 相同，同时终止后续处理
func AbortFail(c *gin.Context, httpCode int, message string) {
	c.AbortWithStatusJSON(httpCode, ErrorBody{Error: message})
}

// Raw 原样写出 JSON 字节
// 用于转发上游响应，不做任何解析或改写
func Raw(c *gin.Context, httpCode int, body []byte) {
	c.Data(httpCode, "application/json; charset=utf-8", body)
}
