package sections

import (
	"path/filepath"
	"strings"
)

// DefaultCommentPrefix is used for files whose extension is not known.
const DefaultCommentPrefix = "#"

var extensionPrefixes = map[string]string{
	// shell-like and data formats
	"sh":        "#",
	"bash":      "#",
	"zsh":       "#",
	"fish":      "#",
	"py":        "#",
	"rb":        "#",
	"pl":        "#",
	"yaml":      "#",
	"yml":       "#",
	"toml":      "#",
	"conf":      "#",
	"cfg":       "#",
	"ini":       "#",
	"env":       "#",
	"gitconfig": "#",

	// c-like
	"js":    "//",
	"ts":    "//",
	"jsx":   "//",
	"tsx":   "//",
	"c":     "//",
	"cc":    "//",
	"cpp":   "//",
	"h":     "//",
	"hpp":   "//",
	"rs":    "//",
	"go":    "//",
	"java":  "//",
	"kt":    "//",
	"swift": "//",
	"scala": "//",
	"json":  "//",
	"jsonc": "//",
	"json5": "//",

	"lua": "--",
	"sql": "--",
	"hs":  "--",

	"vim": `"`,
}

// CommentPrefix returns the comment token used to write section tags in the
// file named filename. Only the final extension is considered, so
// "settings.local.json" resolves through "json".
func CommentPrefix(filename string) string {
	base := strings.ToLower(filepath.Base(filename))
	if strings.Contains(base, "vimrc") {
		return `"`
	}

	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	if prefix, ok := extensionPrefixes[ext]; ok {
		return prefix
	}
	return DefaultCommentPrefix
}
