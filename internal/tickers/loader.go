package tickers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// aliases maps legacy symbols to the form market-data providers expect.
var aliases = map[string]string{
	"BRKB": "BRK-B",
}

// Normalize rewrites a known alias to its canonical symbol. Applying it twice is a no-op.
func Normalize(symbol string) string {
	if canonical, ok := aliases[symbol]; ok {
		return canonical
	}
	return symbol
}

// LoadFile reads a headerless, one-symbol-per-line ticker list.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tickers: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads symbols from the first column of r, drops blanks, normalizes aliases and
// removes duplicates keeping the first occurrence.
func Load(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	seen := make(map[string]bool)
	var out []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tickers: %w", err)
		}
		if len(rec) == 0 {
			continue
		}
		sym := Normalize(strings.TrimSpace(rec[0]))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out, nil
}
