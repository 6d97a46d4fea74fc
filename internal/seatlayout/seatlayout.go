// Package seatlayout maps a bus seat configuration such as "2x2" to row and
// column geometry, and converts between the two seat numbering schemes stored
// in the seats table: plain sequential integers ("10") and letter+row codes
// ("B3", letter = position in row, number = row).
package seatlayout

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Side of the aisle a seat sits on
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Scheme selects how seat numbers are generated for a new bus
type Scheme string

const (
	SchemeLettered Scheme = "lettered"
	SchemeNumeric  Scheme = "numeric"
)

// Configuration is the parsed "LxR" seat configuration of a bus
type Configuration struct {
	Left  int
	Right int
}

// ParseConfiguration parses "LxR" (case-insensitive, surrounding spaces allowed)
func ParseConfiguration(s string) (Configuration, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return Configuration{}, fmt.Errorf("seat configuration %q must look like 2x2", s)
	}
	left, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Configuration{}, fmt.Errorf("seat configuration %q: invalid left count", s)
	}
	right, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Configuration{}, fmt.Errorf("seat configuration %q: invalid right count", s)
	}
	if left < 0 || right < 0 || left+right == 0 {
		return Configuration{}, fmt.Errorf("seat configuration %q must have at least one seat per row", s)
	}
	if left+right > 26 {
		return Configuration{}, fmt.Errorf("seat configuration %q has more seats per row than letters", s)
	}
	return Configuration{Left: left, Right: right}, nil
}

// String renders the configuration back to "LxR"
func (c Configuration) String() string {
	return fmt.Sprintf("%dx%d", c.Left, c.Right)
}

// SeatsPerRow is L + R
func (c Configuration) SeatsPerRow() int {
	return c.Left + c.Right
}

// RowsNeeded is ceil(totalSeats / seatsPerRow)
func (c Configuration) RowsNeeded(totalSeats int) int {
	spr := c.SeatsPerRow()
	if spr == 0 || totalSeats <= 0 {
		return 0
	}
	return (totalSeats + spr - 1) / spr
}

// Position is where a seat sits in the bus grid
type Position struct {
	Row    int  // 1-based
	Column int  // 1-based position within the row, left to right
	Side   Side // left or right of the aisle
}

// PositionOf maps a 0-based seat index to its row and side
func (c Configuration) PositionOf(index int) Position {
	spr := c.SeatsPerRow()
	if spr == 0 || index < 0 {
		return Position{}
	}
	inRow := index % spr
	side := SideRight
	if inRow < c.Left {
		side = SideLeft
	}
	return Position{
		Row:    index/spr + 1,
		Column: inRow + 1,
		Side:   side,
	}
}

// SeatTypeAt classifies a 0-based seat index as window, aisle or standard
func (c Configuration) SeatTypeAt(index int) string {
	if c.SeatsPerRow() == 0 || index < 0 {
		return "standard"
	}
	inRow := index % c.SeatsPerRow()
	switch {
	case inRow == 0 || inRow == c.SeatsPerRow()-1:
		return "window"
	case inRow == c.Left-1 || inRow == c.Left:
		return "aisle"
	default:
		return "standard"
	}
}

// CodeKind tags which numbering scheme a seat code uses
type CodeKind int

const (
	KindUnknown CodeKind = iota
	KindNumeric
	KindLetterRow
)

// SeatCode is a parsed seat number: either Numeric(Number) or LetterRow(Letter, Row)
type SeatCode struct {
	Kind   CodeKind
	Number int  // set for KindNumeric
	Letter rune // set for KindLetterRow, 'A'..'Z'
	Row    int  // set for KindLetterRow, 1-based
	Raw    string
}

// ParseSeatCode classifies a stored seat number. It never fails; codes that
// match neither scheme come back as KindUnknown.
func ParseSeatCode(raw string) SeatCode {
	s := strings.TrimSpace(raw)
	code := SeatCode{Kind: KindUnknown, Raw: raw}
	if s == "" {
		return code
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n > 0 {
			code.Kind = KindNumeric
			code.Number = n
		}
		return code
	}

	letter := unicode.ToUpper(rune(s[0]))
	if letter < 'A' || letter > 'Z' {
		return code
	}
	row, ok := parseRow(s[1:])
	if !ok {
		return code
	}
	code.Kind = KindLetterRow
	code.Letter = letter
	code.Row = row
	return code
}

// MaxRow bounds the row number of a lettered seat code
const MaxRow = 999

// parseRow accepts plain ASCII digits without a leading zero, up to MaxRow
func parseRow(s string) (int, bool) {
	if s == "" || len(s) > 3 || s[0] == '0' {
		return 0, false
	}
	row := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		row = row*10 + int(s[i]-'0')
	}
	return row, row <= MaxRow
}

// Horizontal returns the canonical sequential seat number for code.
// ok is false for unknown codes and letters beyond the row width.
func (c Configuration) Horizontal(code SeatCode) (n int, ok bool) {
	switch code.Kind {
	case KindNumeric:
		return code.Number, true
	case KindLetterRow:
		pos := int(code.Letter - 'A')
		if pos >= c.SeatsPerRow() {
			return 0, false
		}
		return (code.Row-1)*c.SeatsPerRow() + pos + 1, true
	}
	return 0, false
}

// ToHorizontal converts a seat code to its sequential number for display.
// Numeric codes are returned unchanged and malformed codes are returned as given.
func (c Configuration) ToHorizontal(raw string) string {
	code := ParseSeatCode(raw)
	if code.Kind == KindNumeric {
		return raw
	}
	n, ok := c.Horizontal(code)
	if !ok {
		return raw
	}
	return strconv.Itoa(n)
}

// LetterCode is the inverse of Horizontal for the lettered scheme
func (c Configuration) LetterCode(horizontal int) string {
	spr := c.SeatsPerRow()
	if horizontal < 1 || spr == 0 {
		return ""
	}
	row := (horizontal-1)/spr + 1
	pos := (horizontal - 1) % spr
	return fmt.Sprintf("%c%d", 'A'+rune(pos), row)
}

// GenerateSeatNumbers lists the seat numbers for a new bus in row-major order
func (c Configuration) GenerateSeatNumbers(totalSeats int, scheme Scheme) []string {
	numbers := make([]string, 0, totalSeats)
	for h := 1; h <= totalSeats; h++ {
		if scheme == SchemeNumeric {
			numbers = append(numbers, strconv.Itoa(h))
		} else {
			numbers = append(numbers, c.LetterCode(h))
		}
	}
	return numbers
}

// Compare orders seat numbers by their horizontal number so "10" sorts after
// "2" and "A2" after "D1" in a 2x2 bus. Unresolvable codes sort last, by text.
func (c Configuration) Compare(a, b string) int {
	ha, okA := c.Horizontal(ParseSeatCode(a))
	hb, okB := c.Horizontal(ParseSeatCode(b))
	switch {
	case okA && okB && ha != hb:
		if ha < hb {
			return -1
		}
		return 1
	case okA && !okB:
		return -1
	case !okA && okB:
		return 1
	}
	return strings.Compare(a, b)
}
