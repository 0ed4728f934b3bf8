package annotation

import (
	"slices"
	"sort"
	"strconv"

	"github.com/matzehuels/spantower/pkg/errors"
	"github.com/matzehuels/spantower/pkg/messages"
	"github.com/matzehuels/spantower/pkg/source"
)

// Sentence and equivalence selectors of a mark.
const (
	markSentence = "sent"
	markEquiv    = "equiv"
)

func (b *builder) applyMarks() {
	for _, kind := range source.MarkKinds {
		for _, m := range b.src.Marks[kind] {
			b.applyMark(kind, m)
		}
	}
}

func (b *builder) applyMark(kind string, m source.Mark) {
	if len(m) == 0 {
		return
	}
	d := b.doc
	switch {
	case m[0] == markSentence && len(m) == 2:
		n, err := strconv.Atoi(m[1])
		if err != nil {
			b.sink.Post(messages.Warningf(errors.ErrCodeInvalidInput, "%s mark: bad sentence %q", kind, m[1]))
			return
		}
		d.MarkedSent[n] = true

	case m[0] == markEquiv && len(m) == 3:
		for equivNo, eq := range b.src.Equivs {
			if eq.Type != m[1] || !slices.Contains(eq.Spans, m[2]) {
				continue
			}
			marker := "*" + strconv.Itoa(equivNo)
			for i := 1; i < len(eq.Spans); i++ {
				if ed, ok := d.eventDescs[marker+"*"+strconv.Itoa(i)]; ok && ed.EquivArc != nil {
					ed.EquivArc.Marked = kind
				}
			}
		}

	case len(m) == 2:
		from, errFrom := strconv.Atoi(m[0])
		to, errTo := strconv.Atoi(m[1])
		if errFrom != nil || errTo != nil {
			b.sink.Post(messages.Warningf(errors.ErrCodeInvalidInput, "%s mark: bad text range %v", kind, []string(m)))
			return
		}
		d.markedAt = append(d.markedAt, markedRange{from: from, to: to, kind: kind})

	default:
		if span, ok := d.spans[m[0]]; ok {
			if len(m) == 3 {
				markArcs(span, m[1], m[2], kind)
			} else {
				span.Marked = kind
			}
			return
		}
		if ed, ok := d.eventDescs[m[0]]; ok {
			if origin, ok := d.spans[ed.TriggerID]; ok && len(ed.Roles) > 0 {
				markArcs(origin, ed.Roles[0].Type, ed.Roles[0].Target, kind)
			}
			return
		}
		found := false
		for _, ed := range d.eventOrder {
			if ed.TriggerID != m[0] {
				continue
			}
			if span, ok := d.spans[ed.ID]; ok {
				span.Marked = kind
				found = true
			}
		}
		if !found {
			b.sink.Post(messages.Warningf(errors.ErrCodeDataReference, "%s mark: %s does not exist", kind, m[0]))
		}
	}
}

func markArcs(origin *Span, typ, target, kind string) {
	for _, arc := range origin.Outgoing {
		if arc.Target == target && arc.Type == typ {
			arc.Marked = kind
		}
	}
}

// placeMarkedText records where each marked text range starts and ends
// relative to the chunks.
func (b *builder) placeMarkedText() {
	d := b.doc
	if len(d.markedAt) == 0 {
		return
	}
	numChunks := len(d.Chunks)
	if numChunks == 0 {
		b.sink.Post(messages.Warningf(errors.ErrCodeOffsetRange, "marked text in a document without chunks"))
		return
	}
	sort.SliceStable(d.markedAt, func(i, j int) bool { return d.markedAt[i].from < d.markedAt[j].from })

	textLen := d.TextLen()
	startChunk := 0
	for textNo, r := range d.markedAt {
		from, to := r.from, r.to
		if errors.ValidateOffsets(from, to, textLen) != nil {
			b.sink.Post(messages.Warningf(errors.ErrCodeOffsetRange,
				"marked text [%d, %d) outside the document, clamped", from, to))
		}
		from, to = max(from, 0), max(to, 0)
		if to >= textLen {
			to = max(textLen-1, 0)
		}
		from = min(from, to)

		for startChunk < numChunks && from > d.Chunks[startChunk].To {
			startChunk++
		}
		if startChunk == numChunks {
			b.sink.Post(messages.Errorf(errors.ErrCodeOffsetRange, "marked text [%d, %d): wrong text offset", r.from, r.to))
			continue
		}
		start := d.Chunks[startChunk]
		start.MarkedTextStart = append(start.MarkedTextStart,
			&TextMark{ID: textNo, Start: true, Char: from - start.From, Kind: r.kind})

		cur := startChunk
		for cur < numChunks && to > d.Chunks[cur].To {
			cur++
		}
		if cur == numChunks {
			b.sink.Post(messages.Errorf(errors.ErrCodeOffsetRange, "marked text [%d, %d): wrong text offset", r.from, r.to))
			last := d.Chunks[numChunks-1]
			last.MarkedTextEnd = append(last.MarkedTextEnd,
				&TextMark{ID: textNo, Char: len([]rune(last.Text)), Kind: r.kind})
			continue
		}
		end := d.Chunks[cur]
		end.MarkedTextEnd = append(end.MarkedTextEnd, &TextMark{ID: textNo, Char: to - end.From, Kind: r.kind})
	}
}
