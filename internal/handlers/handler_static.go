package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/SscSPs/holistic_money/internal/dto"
	"github.com/gin-gonic/gin"
)

// registerStaticRoutes serves the pre-built single page app from dir. Unknown
// non-API paths fall back to index.html so client-side routes resolve.
func registerStaticRoutes(r *gin.Engine, dir string) {
	if dir == "" {
		return
	}
	index := filepath.Join(dir, "index.html")
	fileServer := http.FileServer(http.Dir(dir))

	r.NoRoute(func(c *gin.Context) {
		urlPath := c.Request.URL.Path
		if strings.HasPrefix(urlPath, "/api/") ||
			(c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Not found"})
			return
		}
		file := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+urlPath)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(c.Writer, c.Request)
			return
		}
		c.File(index)
	})
}
