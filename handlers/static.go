package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"talkie/server/backend/constants"
)

// RegisterStaticRoutes serves the built web client. Unknown GET paths fall
// back to index.html so client side routing works.
func RegisterStaticRoutes(r *gin.Engine, dir string) {
	r.NoRoute(func(c *gin.Context) { serveClient(c, dir) })
}

func serveClient(c *gin.Context, dir string) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, gin.H{"error": constants.MessagePageNotFound})
		return
	}
	rel := filepath.FromSlash(strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+c.Request.URL.Path)), "/"))
	if rel != "" && rel != "." {
		p := filepath.Join(dir, rel)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			c.File(p)
			return
		}
	}
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": constants.MessagePageNotFound})
		return
	}
	c.File(index)
}
