package handlers

import "github.com/gin-gonic/gin"

// ErrorBody is the error half of the response envelope
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Response is the envelope every endpoint answers with
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

func respondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, Response{Success: false, Error: &ErrorBody{Code: code, Message: message}})
}

func respondErrorDetails(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, Response{Success: false, Error: &ErrorBody{Code: code, Message: message, Details: details}})
}
