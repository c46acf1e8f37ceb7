package extract

import (
	"strings"
)

// 🏷️ Kind identifies the embedded payload language.
type Kind string

const (
	KindPython Kind = "python"
	KindR      Kind = "r"
)

// Kinds lists the supported payload kinds in extraction order.
func Kinds() []Kind {
	return []Kind{KindPython, KindR}
}

// 📎 Extension returns the kind's native file extension.
func (k Kind) Extension() string {
	switch k {
	case KindPython:
		return ".py"
	case KindR:
		return ".R"
	}
	return ""
}

// interpreters maps a kind to the interpreter base names and the flag that
// runs code passed as an argument.
func (k Kind) interpreters() (names []string, flag string) {
	switch k {
	case KindPython:
		return []string{"python", "python2", "python3"}, "-c"
	case KindR:
		return []string{"Rscript"}, "-e"
	}
	return nil, ""
}

// hasMarker reports whether a line invokes the kind's interpreter with its
// "run code passed as argument" flag (python -c / Rscript -e).
func hasMarker(line string, kind Kind) bool {
	names, flag := kind.interpreters()
	fields := strings.Fields(line)
	sawInterp := false
	for _, f := range fields {
		// Peel a command-substitution prefix like OUT=$( off the field
		if i := strings.LastIndex(f, "("); i >= 0 {
			f = f[i+1:]
		}
		base := f[strings.LastIndex(f, "/")+1:]
		matched := false
		for _, n := range names {
			if base == n {
				matched = true
				break
			}
		}
		if matched {
			sawInterp = true
			continue
		}
		if sawInterp && f == flag {
			return true
		}
	}
	return false
}

// markerLine returns the index of the first line carrying the kind's
// marker, or -1.
func markerLine(lines []string, kind Kind) int {
	for i, line := range lines {
		if hasMarker(line, kind) {
			return i
		}
	}
	return -1
}

// 🧱 block is one embedded multi-line region sliced out of the wrapper.
type block struct {
	body       []string
	name       string // shell variable the block is assigned to, if any
	start, end int    // line indexes of the opening and closing marker lines
	terminated bool
}

// scanState tracks where the slicer is inside the wrapper script.
type scanState int

const (
	stateScanning scanState = iota
	stateHeredoc
	stateQuoted
)

// sliceBlocks pulls every embedded block out of the wrapper's lines using an
// explicit state machine. Two embedding styles are recognized:
//
//   - heredoc: an opening "<<MARKER" line, body, then a bare MARKER line
//   - quoted assignment: `NAME="` opening a multi-line string, body, then a
//     line that is just the closing quote
//
// The marker lines themselves are never part of a body. A block that never
// reaches its closing line is returned with terminated=false and always ends
// the scan, since everything after the unmatched opening is inside it.
func sliceBlocks(lines []string) []block {
	var blocks []block
	state := stateScanning
	var current block
	var heredocMarker string

	for i, line := range lines {
		switch state {
		case stateScanning:
			if marker, ok := heredocOpening(line); ok {
				heredocMarker = marker
				current = block{start: i, name: assignName(line)}
				state = stateHeredoc
				continue
			}
			if name, ok := quotedOpening(line); ok {
				current = block{start: i, name: name}
				state = stateQuoted
				continue
			}
		case stateHeredoc:
			if strings.TrimSpace(line) == heredocMarker {
				current.end = i
				current.terminated = true
				blocks = append(blocks, current)
				state = stateScanning
				continue
			}
			current.body = append(current.body, line)
		case stateQuoted:
			if strings.TrimSpace(line) == `"` {
				current.end = i
				current.terminated = true
				blocks = append(blocks, current)
				state = stateScanning
				continue
			}
			current.body = append(current.body, line)
		}
	}

	if state != stateScanning {
		current.end = len(lines)
		blocks = append(blocks, current)
	}
	return blocks
}

// blockFor picks the block feeding the kind's interpreter invocation. The
// invocation names the variable it expands ($PY, "${SCRIPT}"), so a block
// assigned to one of those names wins outright; only when no name matches
// does the positional heuristic decide (nearest block closing before the
// marker line, since inline code is assigned before it is run).
func blockFor(blocks []block, marker int, markerText string) (block, bool) {
	if len(blocks) == 0 {
		return block{}, false
	}
	for _, name := range expansions(markerText) {
		if b, ok := pickBlock(blocks, marker, name); ok {
			return b, true
		}
	}
	b, _ := pickBlock(blocks, marker, "")
	return b, true
}

// pickBlock applies the positional heuristic over blocks assigned to name
// (all blocks when name is empty): the nearest one closing before the
// marker line, else the first candidate.
func pickBlock(blocks []block, marker int, name string) (block, bool) {
	chosen, first := -1, -1
	for i, b := range blocks {
		if name != "" && b.name != name {
			continue
		}
		if first < 0 {
			first = i
		}
		if b.end < marker {
			chosen = i
		}
	}
	if chosen < 0 {
		chosen = first
	}
	if chosen < 0 {
		return block{}, false
	}
	return blocks[chosen], true
}

// expansions lists the $NAME and ${NAME} variable expansions on a line, in
// order of appearance.
func expansions(line string) []string {
	var names []string
	for i := 0; i < len(line); i++ {
		if line[i] != '$' {
			continue
		}
		j := i + 1
		if j < len(line) && line[j] == '{' {
			j++
		}
		start := j
		for j < len(line) && isIdentByte(line[j], j == start) {
			j++
		}
		if j > start {
			names = append(names, line[start:j])
		}
		i = j - 1
	}
	return names
}

// heredocOpening detects a `<<MARKER` (or `<<-MARKER`, `<< MARKER`,
// `<<'MARKER'`) opening and returns the bare marker word.
func heredocOpening(line string) (string, bool) {
	idx := strings.Index(line, "<<")
	if idx < 0 {
		return "", false
	}
	rest := strings.TrimPrefix(line[idx+2:], "-")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", false
	}
	marker := strings.Fields(rest)[0]
	marker = strings.Trim(marker, `'"`)
	marker = strings.TrimRight(marker, ")")
	if marker == "" {
		return "", false
	}
	return marker, true
}

// quotedOpening detects a `NAME="` line opening a multi-line string
// assignment and returns the variable name. A closing quote on the same
// line means the string is single-line and carries no payload.
func quotedOpening(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasSuffix(trimmed, `="`) {
		return "", false
	}
	name := strings.TrimSuffix(trimmed, `="`)
	if name == "" || !isIdentifier(name) {
		return "", false
	}
	return name, true
}

// assignName returns the shell variable a line assigns to, or "" when the
// line is not an assignment (heredocs fed straight to a command).
func assignName(line string) string {
	trimmed := strings.TrimSpace(line)
	eq := strings.IndexByte(trimmed, '=')
	if eq <= 0 {
		return ""
	}
	name := trimmed[:eq]
	if !isIdentifier(name) {
		return ""
	}
	return name
}

func isIdentifier(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i], i == 0) {
			return false
		}
	}
	return len(s) > 0
}

func isIdentByte(b byte, first bool) bool {
	if b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') {
		return true
	}
	return !first && b >= '0' && b <= '9'
}

// unescape undoes the quoting applied when the payload was embedded in the
// wrapper: escaped double quotes for both kinds, and additionally escaped
// dollar signs for R, whose interpolation syntax needs them literal.
func unescape(s string, kind Kind) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	if kind == KindR {
		s = strings.ReplaceAll(s, `\$`, `$`)
	}
	return s
}
