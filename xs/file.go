package xs

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadFile reads a cross-section table from a plain-text file with one
// "<energy> <sigma>" pair per line. Blank lines and surrounding whitespace
// are tolerated; energies must be strictly increasing.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening cross-section file: %w", err)
	}
	defer f.Close()

	var keys, values []float64

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: want two columns, got %d", path, line, len(fields))
		}

		energy, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad energy %q: %w", path, line, fields[0], err)
		}
		sigma, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad sigma %q: %w", path, line, fields[1], err)
		}

		if len(keys) > 0 && energy <= keys[len(keys)-1] {
			return nil, fmt.Errorf("%s:%d: energies must be strictly increasing", path, line)
		}

		keys = append(keys, energy)
		values = append(values, sigma)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading cross-section file: %w", err)
	}

	if len(keys) < 2 {
		return nil, fmt.Errorf("%s: table needs at least two entries, got %d", path, len(keys))
	}

	return New(keys, values), nil
}
