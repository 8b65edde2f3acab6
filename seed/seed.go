// Package seed produces the 0/1 matrices a simulation starts from: parsed
// text files, inline config matrices, named patterns and random soups.
package seed

import (
	"bufio"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol-engine/utils"
)

// Named patterns, row-major
var (
	Glider = [][]int{
		{0, 1, 0},
		{0, 0, 1},
		{1, 1, 1},
	}
	Blinker = [][]int{
		{1, 1, 1},
	}
	Block = [][]int{
		{1, 1},
		{1, 1},
	}
)

var patterns = map[string][][]int{
	"glider":  Glider,
	"blinker": Blinker,
	"block":   Block,
}

// Named returns a copy of a built-in pattern
func Named(name string) ([][]int, bool) {
	p, ok := patterns[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return clone(p), true
}

func clone(m [][]int) [][]int {
	out := make([][]int, len(m))
	for i := range m {
		out[i] = append([]int(nil), m[i]...)
	}
	return out
}

// Blank returns a width x height matrix of zeros
func Blank(width, height int) [][]int {
	m := make([][]int, width)
	for row := range m {
		m[row] = make([]int, height)
	}
	return m
}

// Random fills a width x height matrix, each cell alive with probability density
func Random(width, height int, density float64, rng *rand.Rand) [][]int {
	m := Blank(width, height)
	for row := range m {
		for col := range m[row] {
			if rng.Float64() < density {
				m[row][col] = 1
			}
		}
	}
	return m
}

// Place copies the alive cells of pattern onto m with its top-left corner at
// (row, col). Parts falling outside m are dropped.
func Place(m [][]int, pattern [][]int, row, col int) {
	for r, line := range pattern {
		for c, v := range line {
			tr, tc := row+r, col+c
			if tr < 0 || tr >= len(m) || tc < 0 || tc >= len(m[tr]) {
				continue
			}
			if v == 1 {
				m[tr][tc] = 1
			}
		}
	}
}

// Parse reads a plain-text seed: one row per line, '1'/'O'/'*' alive and
// '0'/'.' dead. Blank lines and lines starting with '!' or '#' are skipped.
// Rows must all have the same length.
func Parse(r io.Reader) ([][]int, error) {
	var (
		m       [][]int
		scanner = bufio.NewScanner(r)
		lineNo  = 0
	)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" || strings.HasPrefix(line, "!") || strings.HasPrefix(line, "#") {
			continue
		}

		row := make([]int, 0, len(line))
		for _, ch := range line {
			switch ch {
			case '1', 'O', '*':
				row = append(row, 1)
			case '0', '.':
				row = append(row, 0)
			default:
				return nil, errors.Wrapf(utils.ErrInvalidConfiguration,
					"[Parse] line %d: unexpected character %q", lineNo, ch)
			}
		}
		if len(m) > 0 && len(row) != len(m[0]) {
			return nil, errors.Wrapf(utils.ErrInvalidConfiguration,
				"[Parse] line %d: row has %d cells, expected %d", lineNo, len(row), len(m[0]))
		}
		m = append(m, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "[Parse] failed to read seed")
	}
	if len(m) == 0 {
		return nil, errors.Wrap(utils.ErrInvalidConfiguration, "[Parse] seed has no rows")
	}
	return m, nil
}

// LoadFile parses the seed file at path
func LoadFile(path string) ([][]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "[LoadFile] failed to open seed file: %+v", path)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "[LoadFile] %s", path)
	}
	return m, nil
}

// validate checks an inline matrix is rectangular and holds only 0/1
func validate(m [][]int) error {
	if len(m) == 0 || len(m[0]) == 0 {
		return errors.Wrap(utils.ErrInvalidConfiguration, "[FromConfig] seed.cells is empty")
	}
	for row := range m {
		if len(m[row]) != len(m[0]) {
			return errors.Wrapf(utils.ErrInvalidConfiguration,
				"[FromConfig] seed.cells row %d has %d entries, expected %d", row, len(m[row]), len(m[0]))
		}
		for col, v := range m[row] {
			if v != 0 && v != 1 {
				return errors.Wrapf(utils.ErrInvalidConfiguration,
					"[FromConfig] seed.cells[%d][%d] = %d, expected 0 or 1", row, col, v)
			}
		}
	}
	return nil
}

// FromConfig resolves the initial matrix: inline seed.cells first, then
// seed.file, then seed.pattern on a width x height canvas.
func FromConfig(config utils.Config) ([][]int, error) {
	switch {
	case len(config.Seed.Cells) > 0:
		if err := validate(config.Seed.Cells); err != nil {
			return nil, err
		}
		return clone(config.Seed.Cells), nil
	case config.Seed.File != "":
		return LoadFile(config.Seed.File)
	}

	if config.Width <= 0 || config.Height <= 0 {
		return nil, errors.Wrapf(utils.ErrInvalidConfiguration,
			"[FromConfig] dimensions must be positive, got %dx%d", config.Width, config.Height)
	}

	name := strings.ToLower(config.Seed.Pattern)
	switch name {
	case "", "random":
		rngSeed := config.Seed.RNGSeed
		if rngSeed == 0 {
			rngSeed = time.Now().UnixNano()
		}
		return Random(config.Width, config.Height, config.Seed.Density, rand.New(rand.NewSource(rngSeed))), nil
	case "blank":
		return Blank(config.Width, config.Height), nil
	}

	pattern, ok := Named(name)
	if !ok {
		return nil, errors.Wrapf(utils.ErrInvalidConfiguration, "[FromConfig] unknown seed pattern %q", config.Seed.Pattern)
	}
	m := Blank(config.Width, config.Height)
	// Center the pattern
	Place(m, pattern, (config.Width-len(pattern))/2, (config.Height-len(pattern[0]))/2)
	return m, nil
}
