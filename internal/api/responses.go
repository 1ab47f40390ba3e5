package api

import "github.com/gin-gonic/gin"

// Response is the envelope every endpoint returns. Errors carry
// success=false plus a message; list endpoints put a Page in Data.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

type Page struct {
	Items      interface{} `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

func OK(c *gin.Context, code int, data interface{}) {
	c.JSON(code, Response{Success: true, Data: data})
}

func Message(c *gin.Context, code int, data interface{}, msg string) {
	c.JSON(code, Response{Success: true, Data: data, Message: msg})
}

func Fail(c *gin.Context, code int, msg string) {
	c.JSON(code, Response{Success: false, Message: msg})
}
