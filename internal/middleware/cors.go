package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS 跨域中间件
// allowOrigins 包含 "*" 时回显任意来源
func CORS(allowOrigins []string) gin.HandlerFunc {
	allowAll := slices.Contains(allowOrigins, "*")

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		header := c.Writer.Header()

		if origin != "" && (allowAll || slices.Contains(allowOrigins, origin)) {
			header.Set("Access-Control-Allow-Origin", origin)
			header.Add("Vary", "Origin")
			header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			header.Set("Access-Control-Allow-Headers", strings.Join([]string{
				"Content-Type", "Authorization", APIKeyHeader, RequestIDHeader,
				"Upgrade", "Connection", "Sec-WebSocket-Key", "Sec-WebSocket-Version",
				"Sec-WebSocket-Extensions", "Sec-WebSocket-Protocol",
			}, ", "))
			// 流式响应的角色信息放在响应头里，浏览器需要显式暴露
			header.Set("Access-Control-Expose-Headers", strings.Join([]string{
				AgentNameHeader, AgentTypeHeader, RequestIDHeader,
			}, ", "))
			header.Set("Access-Control-Max-Age", "3600")
		}

		// OPTIONS 预检请求
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
