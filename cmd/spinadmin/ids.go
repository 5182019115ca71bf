package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// readIDs reads whitespace-separated ids from r. Blank lines and lines
// starting with '#' are skipped.
func readIDs(r io.Reader) ([]string, error) {
	var ids []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, strings.Fields(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ids: %w", err)
	}
	return ids, nil
}

// collectIDs merges positional ids with the ids read from path, in that
// order. A path of "-" reads standard input.
func collectIDs(args []string, path string, stdin io.Reader) ([]string, error) {
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		if id := strings.TrimSpace(arg); id != "" {
			ids = append(ids, id)
		}
	}
	if path == "" {
		return ids, nil
	}

	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open id file: %w", err)
		}
		defer f.Close()
		r = f
	}

	fromFile, err := readIDs(r)
	if err != nil {
		return nil, err
	}
	return append(ids, fromFile...), nil
}
