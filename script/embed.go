package script

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed shots/*.tengo
var ShotsFS embed.FS

// DefaultShot is the shot played when no path is given.
const DefaultShot = "orbit.tengo"

// LoadShot reads a shot by name, preferring an on-disk copy under shots/
// so edits take effect without a rebuild.
func LoadShot(name string) ([]byte, error) {
	clean := cleanShotPath(name)
	if data, err := os.ReadFile(filepath.FromSlash(clean)); err == nil {
		return data, nil
	}
	return ShotsFS.ReadFile(clean)
}

func cleanShotPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "script/shots/"); ok {
		s = after
	}
	if after, ok := strings.CutPrefix(s, "shots/"); ok {
		s = after
	}
	return fmt.Sprintf("shots/%s", s)
}
