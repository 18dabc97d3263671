package pathser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var tokenRe = regexp.MustCompile(`[MmLlZz]|[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)

// ParseSVG parses SVG path data made of absolute M, L and Z commands, the
// subset SVG emits. Repeated coordinate pairs after M or L continue as
// line-to, as in SVG.
func ParseSVG(d string) ([]Command, error) {
	tokens := tokenRe.FindAllString(d, -1)
	if rest := strings.Trim(tokenRe.ReplaceAllString(d, ""), " ,\t\r\n"); rest != "" {
		return nil, fmt.Errorf("unexpected characters %q in path data", rest)
	}

	var cmds []Command
	op := Op(-1)
	for i := 0; i < len(tokens); {
		tok := tokens[i]
		switch tok {
		case "M":
			op = MoveTo
			i++
			continue
		case "L":
			op = LineTo
			i++
			continue
		case "Z", "z":
			cmds = append(cmds, Command{Op: Close})
			op = Op(-1)
			i++
			continue
		case "m", "l":
			return nil, fmt.Errorf("relative command %q not supported", tok)
		}

		if op != MoveTo && op != LineTo {
			return nil, fmt.Errorf("coordinate %q without command", tok)
		}
		if i+1 >= len(tokens) {
			return nil, fmt.Errorf("odd number of coordinates after %s", op)
		}
		x, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("parse x %q: %w", tok, err)
		}
		y, err := strconv.ParseFloat(tokens[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse y %q: %w", tokens[i+1], err)
		}
		cmds = append(cmds, Command{Op: op, X: x, Y: y})
		if op == MoveTo {
			op = LineTo
		}
		i += 2
	}
	return cmds, nil
}
