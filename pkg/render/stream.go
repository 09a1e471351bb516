package render

// Batch is the number of elements a paged part emits per invocation
const Batch = 4

type partKind int

const (
	kindChunk partKind = iota
	kindAction
	kindPaged
)

// Part is one element of a Stream
type Part struct {
	kind  partKind
	emit  func(w *Writer)
	run   func()
	total int
	sep   string
	item  func(w *Writer, i int)
}

// Chunk emits one block in a single invocation. fn runs lazily when the
// part is reached.
func Chunk(fn func(w *Writer)) Part {
	return Part{kind: kindChunk, emit: fn}
}

// Text is a Chunk of static text
func Text(parts ...string) Part {
	return Chunk(func(w *Writer) {
		for _, p := range parts {
			w.String(p)
		}
	})
}

// Action runs a side effect in its own invocation and emits nothing
func Action(fn func()) Part {
	return Part{kind: kindAction, run: fn}
}

// Paged emits total elements, Batch per invocation. sep is written between
// siblings, never after the last element. An empty part is skipped.
func Paged(total int, sep string, item func(w *Writer, i int)) Part {
	return Part{kind: kindPaged, total: total, sep: sep, item: item}
}

// Stream is the lazy, restartable chunk sequence of one response
type Stream struct {
	parts  []Part
	idx    int
	cursor int // Element-Cursor im aktuellen Paged-Part
}

// NewStream creates a stream of parts
func NewStream(parts ...Part) *Stream {
	return &Stream{parts: parts}
}

// Done reports whether every part was produced
func (s *Stream) Done() bool {
	s.skipEmpty()
	return s.idx >= len(s.parts)
}

// Reset restarts the stream from the first part
func (s *Stream) Reset() {
	s.idx = 0
	s.cursor = 0
}

// Next produces the next chunk into w. It returns false once nothing is
// left; a call after that emits nothing.
func (s *Stream) Next(w *Writer) bool {
	s.skipEmpty()
	if s.idx >= len(s.parts) {
		return false
	}

	p := s.parts[s.idx]
	switch p.kind {
	case kindChunk:
		p.emit(w)
		s.idx++
	case kindAction:
		p.run()
		s.idx++
	case kindPaged:
		end := min(s.cursor+Batch, p.total)
		for i := s.cursor; i < end; i++ {
			p.item(w, i)
			if i < p.total-1 {
				w.String(p.sep)
			}
		}
		s.cursor = end
		if s.cursor >= p.total {
			s.idx++
			s.cursor = 0
		}
	}
	return !s.Done()
}

func (s *Stream) skipEmpty() {
	for s.idx < len(s.parts) && s.parts[s.idx].kind == kindPaged && s.parts[s.idx].total <= 0 {
		s.idx++
	}
}
