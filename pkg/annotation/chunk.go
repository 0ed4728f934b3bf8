package annotation

import (
	"sort"
	"strings"

	"github.com/matzehuels/spantower/pkg/errors"
	"github.com/matzehuels/spantower/pkg/messages"
	"github.com/matzehuels/spantower/pkg/source"
)

func (d *Document) newChunk(from, to int, space string) *Chunk {
	c := &Chunk{
		Index: len(d.Chunks),
		Text:  d.Substring(from, to),
		From:  from,
		To:    to,
		Space: space,
	}
	if n := len(d.Chunks); n > 0 {
		d.Chunks[n-1].NextSpace = space
	}
	d.Chunks = append(d.Chunks, c)
	return c
}

// sortSpans orders spans by (from, to), keeping creation order for ties.
func sortSpans(spans []*Span) []*Span {
	out := append([]*Span(nil), spans...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// chunk groups tokens into chunks. A token end strictly inside a span does
// not close the chunk.
func (b *builder) chunk() {
	d := b.doc
	d.SortedSpans = sortSpans(d.spanOrder)
	sorted := d.SortedSpans
	n := len(sorted)

	start, lastTo, firstFrom := 0, 0, -1
	for _, tok := range b.src.TokenOffsets {
		from, to := tok.From(), tok.To()
		if firstFrom < 0 {
			firstFrom = from
		}
		// Token ends only grow, so spans that ended before this one never
		// contain a later token end either.
		for start < n && sorted[start].To <= to {
			start++
		}
		cur := start
		for cur < n && to >= sorted[cur].To {
			cur++
		}
		if cur < n && to > sorted[cur].From {
			continue
		}
		d.newChunk(firstFrom, to, d.Substring(lastTo, firstFrom))
		lastTo, firstFrom = to, -1
	}
	if firstFrom >= 0 {
		to := b.src.TokenOffsets[len(b.src.TokenOffsets)-1].To()
		d.newChunk(firstFrom, to, d.Substring(lastTo, firstFrom))
	}

	if len(d.Chunks) == 0 && n > 0 {
		b.sink.Post(messages.Warningf(errors.ErrCodeData,
			"no tokens, treating the whole text as one chunk"))
		d.newChunk(0, d.TextLen(), "")
	}
}

// markSentences tags the chunk at or after each sentence start with a
// sentence number. The first sentence keeps 0.
func (b *builder) markSentences() {
	chunks := b.doc.Chunks
	numChunks := len(chunks)
	chunkNo, sentenceNo := 0, 0
	pastFirst := false
	for _, sent := range b.src.SentenceOffsets {
		if chunkNo >= numChunks {
			break
		}
		from := sent.From()
		// A sentence starting inside an earlier chunk has no chunk of its own.
		if chunks[chunkNo].From > from {
			continue
		}
		for chunkNo < numChunks && chunks[chunkNo].From < from {
			chunkNo++
		}
		if chunkNo == numChunks {
			break
		}
		chunk := chunks[chunkNo]
		chunkNo++
		if !pastFirst {
			pastFirst = true
			continue
		}
		sentenceNo += max(1, strings.Count(chunk.Space, "\n"))
		chunk.Sentence = sentenceNo
	}
}

// assignSpans attaches every span to the chunk containing its end.
func (b *builder) assignSpans() {
	chunks := b.doc.Chunks
	if len(chunks) == 0 {
		return
	}
	cur := 0
	for _, span := range b.doc.SortedSpans {
		for cur < len(chunks)-1 && span.To > chunks[cur].To {
			cur++
		}
		chunk := chunks[cur]
		if span.To > chunk.To {
			b.sink.Post(messages.Warningf(errors.ErrCodeOffsetRange,
				"span %s [%d, %d) ends after the last token", span.ID, span.From, span.To))
		}
		chunk.Spans = append(chunk.Spans, span)
		span.Chunk = chunk
		span.Text = b.doc.Substring(span.From, span.To)
	}
}

// Offsets returns the chunk boundaries as offsets.
func (d *Document) Offsets() []source.Offset {
	out := make([]source.Offset, len(d.Chunks))
	for i, c := range d.Chunks {
		out[i] = source.Offset{c.From, c.To}
	}
	return out
}
