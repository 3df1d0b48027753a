// Package joke picks the joke of the day for the page footer.
package joke

import (
	"fmt"
	"hash/fnv"
	"os"
	"strings"
	"time"
)

// Daily returns the joke for the given day: the same line all day,
// a different one tomorrow. One joke per line in the file; blank
// lines and #-comments are skipped.
func Daily(path string, now time.Time) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read jokes file: %w", err)
	}

	var jokes []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		jokes = append(jokes, line)
	}
	if len(jokes) == 0 {
		return "", fmt.Errorf("jokes file %s has no entries", path)
	}

	h := fnv.New32a()
	h.Write([]byte(now.UTC().Format("2006-01-02")))
	return jokes[h.Sum32()%uint32(len(jokes))], nil
}
