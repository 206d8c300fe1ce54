package server

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// maxNameLen keeps <name>.stdout.log well below common file name limits.
const maxNameLen = 64

// cleanBasePath normalises a mount prefix to "" or "/seg[/seg...]".
func cleanBasePath(bp string) string {
	bp = strings.Trim(strings.TrimSpace(bp), "/")
	if bp == "" {
		return ""
	}
	return "/" + bp
}

// validLauncherName reports whether s can name a launcher. The name becomes
// the stem of the child's output log files, so it must stay a single plain
// file name: [A-Za-z0-9._-], starting with a letter or digit, no "..".
func validLauncherName(s string) bool {
	if s == "" || len(s) > maxNameLen || strings.Contains(s, "..") {
		return false
	}
	for i, r := range s {
		alnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if i == 0 && !alnum {
			return false
		}
		if !alnum && r != '.' && r != '_' && r != '-' {
			return false
		}
	}
	return true
}

// validExecutablePath accepts only absolute, already clean paths. Requests
// must name the executable exactly; "." and ".." segments or duplicate and
// trailing separators are rejected rather than resolved.
func validExecutablePath(p string) bool {
	if p == "" || !filepath.IsAbs(p) {
		return false
	}
	return filepath.Clean(p) == p
}

func writeJSON(c *gin.Context, code int, v any) {
	c.Header("Content-Type", "application/json")
	c.Status(code)
	_ = json.NewEncoder(c.Writer).Encode(v)
}

func writeError(c *gin.Context, code int, msg string) {
	writeJSON(c, code, errorResp{Error: msg})
}
