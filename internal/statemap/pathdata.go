package statemap

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gogpu/gg"
)

// ErrPathData reports malformed SVG path data.
var ErrPathData = errors.New("statemap: invalid path data")

// ParsePathData parses SVG path data into a gg path. It understands the
// move, line, horizontal, vertical, quadratic, cubic and close commands in
// both absolute and relative form, which covers everything the boundary
// generator emits and what hand-edited artifacts typically contain.
func ParsePathData(d string) (*gg.Path, error) {
	p := gg.NewPath()
	s := &pathScanner{src: d}

	var (
		cmd     byte
		start   gg.Point
		current gg.Point
		started bool
	)
	for {
		s.skipSpace()
		if s.done() {
			break
		}
		if c := s.peek(); isCommand(c) {
			cmd = c
			s.pos++
		} else if cmd == 0 {
			return nil, fmt.Errorf("%w: expected command at offset %d", ErrPathData, s.pos)
		}

		rel := cmd >= 'a'
		base := current
		if !rel {
			base = gg.Point{}
		}

		switch cmd {
		case 'Z', 'z':
			if !started {
				return nil, fmt.Errorf("%w: close before move", ErrPathData)
			}
			p.Close()
			current = start
			// Z takes no arguments; force an explicit command next.
			cmd = 0
			continue
		case 'M', 'm':
			pt, err := s.point()
			if err != nil {
				return nil, err
			}
			pt = pt.Add(base)
			p.MoveTo(pt.X, pt.Y)
			start, current, started = pt, pt, true
			// Subsequent pairs are implicit line-tos.
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
			continue
		}

		if !started {
			return nil, fmt.Errorf("%w: drawing command %q before move", ErrPathData, cmd)
		}

		switch cmd {
		case 'L', 'l':
			pt, err := s.point()
			if err != nil {
				return nil, err
			}
			current = pt.Add(base)
			p.LineTo(current.X, current.Y)
		case 'H', 'h':
			x, err := s.number()
			if err != nil {
				return nil, err
			}
			current = gg.Pt(x+base.X, current.Y)
			p.LineTo(current.X, current.Y)
		case 'V', 'v':
			y, err := s.number()
			if err != nil {
				return nil, err
			}
			current = gg.Pt(current.X, y+base.Y)
			p.LineTo(current.X, current.Y)
		case 'Q', 'q':
			pts, err := s.points(2)
			if err != nil {
				return nil, err
			}
			c, end := pts[0].Add(base), pts[1].Add(base)
			p.QuadraticTo(c.X, c.Y, end.X, end.Y)
			current = end
		case 'C', 'c':
			pts, err := s.points(3)
			if err != nil {
				return nil, err
			}
			c1, c2, end := pts[0].Add(base), pts[1].Add(base), pts[2].Add(base)
			p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
			current = end
		default:
			return nil, fmt.Errorf("%w: unsupported command %q", ErrPathData, cmd)
		}
	}
	return p, nil
}

func isCommand(c byte) bool {
	switch c {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v', 'Q', 'q', 'C', 'c', 'Z', 'z':
		return true
	}
	return false
}

type pathScanner struct {
	src string
	pos int
}

func (s *pathScanner) done() bool { return s.pos >= len(s.src) }

func (s *pathScanner) peek() byte { return s.src[s.pos] }

func (s *pathScanner) skipSpace() {
	for !s.done() {
		switch s.peek() {
		case ' ', '\t', '\n', '\r', ',':
			s.pos++
		default:
			return
		}
	}
}

func (s *pathScanner) number() (float64, error) {
	s.skipSpace()
	begin := s.pos
	if !s.done() && (s.peek() == '+' || s.peek() == '-') {
		s.pos++
	}
	digits, dot := 0, false
scan:
	for !s.done() {
		c := s.peek()
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && !dot:
			dot = true
		default:
			break scan
		}
		s.pos++
	}
	if digits > 0 && !s.done() && (s.peek() == 'e' || s.peek() == 'E') {
		s.pos++
		if !s.done() && (s.peek() == '+' || s.peek() == '-') {
			s.pos++
		}
		for !s.done() && s.peek() >= '0' && s.peek() <= '9' {
			s.pos++
		}
	}
	if digits == 0 {
		return 0, fmt.Errorf("%w: expected number at offset %d", ErrPathData, begin)
	}
	v, err := strconv.ParseFloat(s.src[begin:s.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPathData, err)
	}
	return v, nil
}

func (s *pathScanner) point() (gg.Point, error) {
	x, err := s.number()
	if err != nil {
		return gg.Point{}, err
	}
	y, err := s.number()
	if err != nil {
		return gg.Point{}, err
	}
	return gg.Pt(x, y), nil
}

func (s *pathScanner) points(n int) ([]gg.Point, error) {
	out := make([]gg.Point, n)
	for i := range out {
		pt, err := s.point()
		if err != nil {
			return nil, err
		}
		out[i] = pt
	}
	return out, nil
}
