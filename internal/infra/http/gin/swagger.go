package ginserver

import (
	_ "embed"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
)

// swaggerSpec is the hand-maintained OpenAPI 3 document for the quote,
// booking and host routes.
//
//go:embed swagger/openapi.json
var swaggerSpec []byte

//go:embed swagger/index.html
var swaggerHTML string

const swaggerDocPath = "/swagger/doc.json"

// registerSwaggerRoutes serves the OpenAPI document and a Swagger UI page
// that loads it.
func registerSwaggerRoutes(router gin.IRoutes) {
	router.GET(swaggerDocPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", swaggerSpec)
	})
	router.GET("/swagger", func(c *gin.Context) {
		html := strings.ReplaceAll(swaggerHTML, "{{SPEC_URL}}", swaggerDocPath)
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
	})
}
