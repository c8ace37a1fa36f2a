package parse

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// indentRx represents regex which 1st capturing group contains 1 or more space characters in the beginnging of the line
var indentRx = regexp.MustCompile(`^( +).*`)

// GetIndent returns amount of space characters in the beginning of the <line>
func GetIndent(line string) int {
	if matches := indentRx.FindStringSubmatch(line); len(matches) > 1 {
		return len(matches[1])
	}
	return 0
}

// HasTabIndent returns true if leading whitespace of the <line> contains a tab character
func HasTabIndent(line string) bool {
	content := strings.TrimLeft(line, " \t")
	return strings.Contains(line[:len(line)-len(content)], "\t")
}

// LastPathItem returns last item in <path> split by <delim> or <path> if <delim> is empty or last item is empty
func LastPathItem(path, delim string) string {
	if delim == "" {
		return path
	}
	item, _ := lo.Last(strings.Split(path, delim))
	return lo.Ternary(item == "", path, item)
}

// CutOutside returns text before and after the first <sep> in <inp> which is not enclosed in quotes or parentheses
// and true if such separator is found.
func CutOutside(inp string, sep rune) (before, after string, found bool) {
	var quote rune
	depth := 0
	for idx, char := range inp {
		switch {
		case quote != 0:
			if char == quote {
				quote = 0
			}
		case char == '"' || char == '\'':
			quote = char
		case char == '(':
			depth++
		case char == ')' && depth > 0:
			depth--
		case char == sep && depth == 0:
			return inp[:idx], inp[idx+1:], true
		}
	}
	return inp, "", false
}
