package main

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// idLength is the length of generated identifiers.
const idLength = 32

// randomID returns idLength distinct characters of idAlphabet in random order.
func randomID(rng *rand.Rand) string {
	perm := rng.Perm(len(idAlphabet))
	var sb strings.Builder
	sb.Grow(idLength)
	for _, i := range perm[:idLength] {
		sb.WriteByte(idAlphabet[i])
	}
	return sb.String()
}

// generateIDs builds the demo workload: count random identifiers, each
// immediately repeated, and the whole sequence repeated once more so that
// duplicates occur both adjacent and far apart.
func generateIDs(count int, rng *rand.Rand) []string {
	half := make([]string, 0, 2*count)
	for i := 0; i < count; i++ {
		id := randomID(rng)
		half = append(half, id, id)
	}
	return append(half, half...)
}

// readIDs reads one identifier per line from path, or from stdin when path
// is "-". Blank lines are skipped.
func readIDs(path string, stdin io.Reader) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var ids []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return ids, nil
}
