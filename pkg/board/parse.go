package board

import (
	"bufio"
	"io"
	"slices"
	"strings"

	errs "github.com/matzehuels/burrow/pkg/errors"
	"github.com/matzehuels/burrow/pkg/topology"
)

// Order is the reading order of a compact token list.
type Order int

const (
	// RegionMajor lists each room in turn, shallow to deep: "BA CD BC DA".
	RegionMajor Order = iota
	// RowMajor lists each room row in turn, left to right, the order in
	// which a diagram reads: "BCBD ADCA".
	RowMajor
)

// Parse reads a board diagram.
func Parse(r io.Reader) (*Layout, error) {
	data, err := io.ReadAll(io.LimitReader(r, errs.MaxBoardSize+1))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidBoard, err, "read board")
	}
	return ParseString(string(data))
}

// ParseString reads a board diagram from s.
func ParseString(s string) (*Layout, error) {
	if err := errs.ValidateBoardText(s); err != nil {
		return nil, err
	}

	var lines []string
	sc := bufio.NewScanner(strings.NewReader(s))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 4 {
		return nil, errs.New(errs.ErrCodeInvalidBoard,
			"board needs a top wall, a corridor, at least one room row and a bottom wall")
	}
	if !isWall(lines[0]) {
		return nil, errs.New(errs.ErrCodeInvalidBoard, "line 1: expected a wall, got %q", lines[0])
	}

	corridor, offset, err := parseCorridor(lines[1])
	if err != nil {
		return nil, err
	}

	last := len(lines) - 1
	if !isWall(lines[last]) {
		return nil, errs.New(errs.ErrCodeInvalidBoard,
			"line %d: expected the bottom wall, got %q", last+1, lines[last])
	}

	l := &Layout{Corridor: corridor}
	for n, line := range lines[2:last] {
		cols, cells := roomCells(line, offset)
		if len(cells) == 0 {
			return nil, errs.New(errs.ErrCodeInvalidBoard, "line %d: room row has no cells", n+3)
		}
		if n == 0 {
			l.Entrances = cols
			l.Rooms = make([][]rune, len(cols))
		} else if !slices.Equal(cols, l.Entrances) {
			return nil, errs.New(errs.ErrCodeInvalidBoard,
				"line %d: room cells at columns %v, first row has them at %v", n+3, cols, l.Entrances)
		}
		for i, c := range cols {
			if c < 0 || c >= len(corridor) {
				return nil, errs.New(errs.ErrCodeInvalidBoard,
					"line %d: room cell at column %d is outside the corridor", n+3, c)
			}
			l.Rooms[i] = append(l.Rooms[i], cells[i])
		}
	}

	for _, c := range l.Entrances {
		if corridor[c] != Empty {
			return nil, errs.New(errs.ErrCodeInvalidBoard,
				"token %q stands in front of the room at column %d", corridor[c], c)
		}
	}
	return l, nil
}

// ParseTokens reads a compact token list for rooms rooms. Whitespace and '#'
// are ignored and '.' marks an empty cell. The depth is the token count
// divided by rooms. The corridor is empty and uses the default geometry.
func ParseTokens(s string, rooms int, order Order) (*Layout, error) {
	if rooms <= 0 {
		return nil, errs.New(errs.ErrCodeInvalidLayout, "room count must be positive, got %d", rooms)
	}
	cells := cellsOf(s)
	if len(cells) == 0 || len(cells)%rooms != 0 {
		return nil, errs.New(errs.ErrCodeTokenCount,
			"%d tokens do not fill %d rooms evenly", len(cells), rooms)
	}
	depth := len(cells) / rooms

	entrances := topology.DefaultEntrances(rooms)
	l := &Layout{
		Corridor:  emptyCorridor(entrances[rooms-1] + 3),
		Entrances: entrances,
		Rooms:     make([][]rune, rooms),
	}
	for ri := range l.Rooms {
		l.Rooms[ri] = make([]rune, depth)
		for d := range depth {
			if order == RowMajor {
				l.Rooms[ri][d] = cells[d*rooms+ri]
			} else {
				l.Rooms[ri][d] = cells[ri*depth+d]
			}
		}
	}
	return l, nil
}

// parseCorridor reads the corridor line "#...........#" and returns its
// cells and the string offset of column 0.
func parseCorridor(line string) ([]rune, int, error) {
	start := strings.IndexByte(line, '#')
	end := strings.LastIndexByte(line, '#')
	if start < 0 || end <= start+1 || strings.TrimSpace(line[:start]) != "" {
		return nil, 0, errs.New(errs.ErrCodeInvalidBoard, "line 2: expected a corridor, got %q", line)
	}
	inner := line[start+1 : end]
	if strings.ContainsAny(inner, "# \t") {
		return nil, 0, errs.New(errs.ErrCodeInvalidBoard, "line 2: corridor %q is not contiguous", inner)
	}
	return []rune(inner), start + 1, nil
}

// roomCells returns the corridor columns and symbols of the cells in a
// room row. Columns are relative to the corridor's column 0.
func roomCells(line string, offset int) ([]int, []rune) {
	var cols []int
	var cells []rune
	for i, r := range []rune(line) {
		if r == '#' || r == ' ' || r == '\t' {
			continue
		}
		cols = append(cols, i-offset)
		cells = append(cells, r)
	}
	return cols, cells
}

func isWall(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed != "" && strings.Trim(trimmed, "#") == ""
}
