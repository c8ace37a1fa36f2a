package scan

import (
	"strings"
)

// Scanner represents rune slice line scanner
type Scanner struct {
	data         []rune
	done         bool
	RuneIdx      int // Index of the next rune to read
	Line         string
	LineNo       int // 1-based number of the latest line found, blank lines included
	LineStartIdx int
	LineEndIdx   int // Index of the line break ending the latest line or length of data
}

// New returns new scanner for <data>, starting from the <startIdx>
func New(data []rune, startIdx int) *Scanner {
	return &Scanner{data: data, RuneIdx: startIdx}
}

// Lines returns true for every line of text in the data given to Scanner.
//
// If <skipEmpty> is true, do not return true for the blank lines (only spaces, tabs, /r).
//
// Unlike the bufio.Scanner, line numbers keep counting skipped lines. Line does not contain the trailing /r/n or /n.
func (s *Scanner) Lines(skipEmpty bool) bool {
	for !s.done {
		if s.RuneIdx >= len(s.data) {
			s.done = true
			return false
		}

		startIdx := s.RuneIdx
		endIdx := startIdx
		for endIdx < len(s.data) && s.data[endIdx] != '\n' {
			endIdx++
		}

		s.LineNo++
		s.LineStartIdx = startIdx
		s.LineEndIdx = endIdx
		s.Line = strings.TrimRight(string(s.data[startIdx:endIdx]), "\r")
		s.RuneIdx = endIdx + 1

		if skipEmpty && strings.TrimSpace(s.Line) == "" {
			continue
		}
		return true
	}
	return false
}
