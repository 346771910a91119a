package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

var prettyOptions = &pretty.Options{Width: 80, Indent: "    "}

// LevelLog appends raw submissions to per-level JSON array files.
type LevelLog struct {
	mu  sync.Mutex
	dir string
}

// NewLevelLog returns a log writing level_<id>_data.json files into dir.
func NewLevelLog(dir string) *LevelLog {
	return &LevelLog{dir: dir}
}

// PathFor returns the log file for a level.
func (l *LevelLog) PathFor(levelID string) string {
	return filepath.Join(l.dir, fmt.Sprintf("level_%s_data.json", levelID))
}

// Append adds raw to the end of the level's array, creating the file when absent.
// It returns the file path.
func (l *LevelLog) Append(ctx context.Context, levelID string, raw []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !gjson.ValidBytes(raw) {
		return "", fmt.Errorf("raw submission is not valid JSON")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	path := l.PathFor(levelID)
	existing, err := l.read(path)
	if err != nil {
		return "", err
	}
	updated, err := appendEntry(existing, raw)
	if err != nil {
		return "", fmt.Errorf("failed to append to %s: %w", path, err)
	}
	if err := writeFileAtomic(path, pretty.PrettyOptions(updated, prettyOptions)); err != nil {
		return "", err
	}
	return path, nil
}

// Entries returns the raw entries of a level log in append order.
func (l *LevelLog) Entries(levelID string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := l.read(l.PathFor(levelID))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, item := range gjson.ParseBytes(data).Array() {
		out = append(out, item.Raw)
	}
	return out, nil
}

// appendEntry pushes raw onto the array document list.
func appendEntry(list, raw []byte) ([]byte, error) {
	doc := make([]byte, 0, len(list)+len(raw)+16)
	doc = append(doc, `{"entries":`...)
	doc = append(doc, list...)
	doc = append(doc, '}')
	doc, err := sjson.SetRawBytes(doc, "entries.-1", pretty.Ugly(raw))
	if err != nil {
		return nil, err
	}
	return []byte(gjson.GetBytes(doc, "entries").Raw), nil
}

func (l *LevelLog) read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []byte("[]"), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsArray() {
		return nil, fmt.Errorf("%s is not a JSON array", path)
	}
	return data, nil
}
