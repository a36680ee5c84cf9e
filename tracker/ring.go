package tracker

import "strings"

// ring keeps the last n output lines for failure diagnostics.
type ring struct {
	lines []string
	next  int
	full  bool
}

func newRing(n int) *ring {
	return &ring{lines: make([]string, n)}
}

func (r *ring) push(line string) {
	r.lines[r.next] = line
	r.next++
	if r.next == len(r.lines) {
		r.next = 0
		r.full = true
	}
}

// tail returns the buffered lines oldest-first.
func (r *ring) tail() []string {
	if !r.full {
		return append([]string(nil), r.lines[:r.next]...)
	}
	out := make([]string, 0, len(r.lines))
	out = append(out, r.lines[r.next:]...)
	out = append(out, r.lines[:r.next]...)
	return out
}

func (r *ring) String() string {
	return strings.Join(r.tail(), "\n")
}
