package logger

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// FilterHook đánh dấu các entry không khớp bộ lọc module / level / path.
// Entry không có field tương ứng thì không bị lọc theo tiêu chí đó.
type FilterHook struct {
	modules map[string]bool
	levels  map[string]bool
	paths   []string
}

// NewFilterHook tạo filter hook từ cấu hình
func NewFilterHook(cfg *LogConfig) *FilterHook {
	return &FilterHook{
		modules: parseFilter(cfg.FilterModules),
		levels:  parseFilter(cfg.FilterLevels),
		paths:   parsePrefixes(cfg.FilterPaths),
	}
}

// parseFilter trả về nil khi cho phép tất cả
func parseFilter(s string) map[string]bool {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return nil
	}
	out := make(map[string]bool)
	for _, v := range strings.Split(s, ",") {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out[v] = true
		}
	}
	return out
}

func parsePrefixes(s string) []string {
	var out []string
	for v := range parseFilter(s) {
		out = append(out, v)
	}
	return out
}

func (h *FilterHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *FilterHook) Fire(entry *logrus.Entry) error {
	if !h.allowed(entry) {
		entry.Data[filteredKey] = true
	}
	return nil
}

func (h *FilterHook) allowed(entry *logrus.Entry) bool {
	if h.levels != nil && !h.levels[entry.Level.String()] {
		return false
	}
	if h.modules != nil {
		if module, ok := entry.Data["module"].(string); ok && module != "" && !h.modules[strings.ToLower(module)] {
			return false
		}
	}
	if len(h.paths) > 0 {
		if path, ok := entry.Data["path"].(string); ok && path != "" {
			path = strings.ToLower(path)
			for _, p := range h.paths {
				if strings.HasPrefix(path, p) {
					return true
				}
			}
			return false
		}
	}
	return true
}
