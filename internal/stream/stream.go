// Package stream provides helpers for reading and writing creature records
// via stdin/stdout in JSONL format, the canonical pipe format:
//
//	dex list --format jsonl | dex fav add -
package stream

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/derickschaefer/dex/internal/model"
)

// ReadIDs reads creature IDs from r. Each non-blank line is either a JSON
// object with an integer "id" field (a record from `--format jsonl`) or a
// bare positive integer. Lines starting with "//" are comments.
func ReadIDs(r io.Reader) ([]int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var ids []int
	lineNum := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineNum++
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		var id int
		if strings.HasPrefix(line, "{") {
			var rec struct {
				ID *int `json:"id"`
			}
			if err := json.Unmarshal([]byte(line), &rec); err != nil {
				return nil, fmt.Errorf("line %d: invalid JSON: %w", lineNum, err)
			}
			if rec.ID == nil {
				return nil, fmt.Errorf("line %d: record has no \"id\" field", lineNum)
			}
			id = *rec.ID
		} else {
			n, err := strconv.Atoi(strings.TrimPrefix(line, "#"))
			if err != nil {
				return nil, fmt.Errorf("line %d: expected an id or a JSON record, got %q", lineNum, line)
			}
			id = n
		}
		if id <= 0 {
			return nil, fmt.Errorf("line %d: id must be positive, got %d", lineNum, id)
		}
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no ids read from input (is stdin empty?)")
	}
	return ids, nil
}

// WriteJSONL writes creatures as JSONL to w, one record per line.
func WriteJSONL(w io.Writer, creatures []model.Creature) error {
	enc := json.NewEncoder(w)
	for _, c := range creatures {
		if err := enc.Encode(c); err != nil {
			return err
		}
	}
	return nil
}

// IsTTY returns true if stdout is a terminal (not a pipe).
func IsTTY() bool {
	return isCharDevice(os.Stdout)
}

// StdinPiped returns true if stdin is not a terminal.
func StdinPiped() bool {
	return !isCharDevice(os.Stdin)
}

func isCharDevice(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
