package logs

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"webfonts/internal/logging"
)

// Tail returns up to limit trailing lines of the file at path. A missing file
// yields no lines and no error; limit <= 0 returns every line.
func Tail(path string, limit int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if limit <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log file: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, limit)
	count, idx := 0, 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	lines := make([]string, count)
	if count == limit {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// FindBuildLog resolves a build log under logDir. An empty id selects the most
// recently modified log; otherwise id may be any unique prefix of a build ID.
func FindBuildLog(logDir, id string) (string, error) {
	id = strings.TrimSpace(id)
	buildsDir := filepath.Dir(logging.BuildLogPath(logDir, id))
	matches, err := filepath.Glob(filepath.Join(buildsDir, "build-"+id+"*.log"))
	if err != nil {
		return "", fmt.Errorf("match build logs: %w", err)
	}
	if len(matches) == 0 {
		if id == "" {
			return "", errors.New("no build logs found")
		}
		return "", fmt.Errorf("no build log matches %q", id)
	}
	if id != "" {
		if len(matches) > 1 {
			return "", fmt.Errorf("build id %q is ambiguous (%d logs match)", id, len(matches))
		}
		return matches[0], nil
	}

	type candidate struct {
		path    string
		modTime int64
	}
	candidates := make([]candidate, 0, len(matches))
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{path: match, modTime: info.ModTime().UnixNano()})
	}
	if len(candidates) == 0 {
		return "", errors.New("no build logs found")
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].modTime == candidates[j].modTime {
			return candidates[i].path > candidates[j].path
		}
		return candidates[i].modTime > candidates[j].modTime
	})
	return candidates[0].path, nil
}
