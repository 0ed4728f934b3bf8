package annotation

import (
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/spantower/pkg/collection"
	"github.com/matzehuels/spantower/pkg/errors"
	"github.com/matzehuels/spantower/pkg/messages"
	"github.com/matzehuels/spantower/pkg/source"
)

// CueClass replaces the type class of spans that serve as attribute cues.
const CueClass = "CUE"

// AnnotatorNotes is the comment kind holding free-text annotator notes.
const AnnotatorNotes = "AnnotatorNotes"

// commentPriority lists comment kinds from lowest to highest priority.
var commentPriority = []string{"Unconfirmed", "Incomplete", "Warning", "Error", AnnotatorNotes}

func priority(kind string) int {
	if kind == "" {
		return -1
	}
	for i, level := range commentPriority {
		if strings.Contains(kind, level) {
			return i
		}
	}
	return 0
}

type trigger struct {
	span   *Span
	events []*Span
}

type builder struct {
	src      *source.Document
	coll     *collection.Collection
	sink     messages.Sink
	doc      *Document
	triggers map[string]*trigger
}

// Build constructs the annotation graph of a prepared document. It never
// fails: problems are posted to sink and the affected records are skipped.
// A nil collection draws every type under its own name.
func Build(src *source.Document, coll *collection.Collection, sink messages.Sink) *Document {
	if coll == nil {
		coll = collection.Default()
	}
	if sink == nil {
		sink = messages.Discard
	}
	b := &builder{
		src:      src,
		coll:     coll,
		sink:     sink,
		doc:      newDocument(src.Text),
		triggers: make(map[string]*trigger),
	}
	b.doc.SentenceCount = src.SentenceCount
	b.doc.MTime = src.MTime

	b.addSpans()
	b.addModifications()
	b.addEquivs()
	b.addRelations()
	b.addAttributes()
	b.addComments()

	b.chunk()
	b.markSentences()
	b.assignSpans()
	b.addArcs()
	b.applyMarks()
	b.placeMarkedText()
	return b.doc
}

func (b *builder) clampSpan(tb source.TextBound) (int, int) {
	n := b.doc.TextLen()
	if err := errors.ValidateOffsets(tb.From, tb.To, n); err != nil {
		b.sink.Post(messages.Warningf(errors.ErrCodeOffsetRange, "span %s: %v", tb.ID, err))
		from := max(0, min(tb.From, n))
		return from, max(from, min(tb.To, n))
	}
	return tb.From, tb.To
}

func (b *builder) addSpans() {
	for _, e := range b.src.Entities {
		from, to := b.clampSpan(e)
		b.doc.addSpan(newSpan(e.ID, e.Type, from, to, GeneralEntity))
	}
	for _, t := range b.src.Triggers {
		from, to := b.clampSpan(t)
		b.triggers[t.ID] = &trigger{span: newSpan(t.ID, t.Type, from, to, GeneralTrigger)}
	}
	for _, ev := range b.src.Events {
		trig, ok := b.triggers[ev.Trigger]
		if !ok {
			b.sink.Post(messages.Errorf(errors.ErrCodeDataReference,
				"trigger %s of event %s does not exist", ev.Trigger, ev.ID))
			continue
		}
		b.doc.addEventDesc(&EventDesc{
			Key:       ev.ID,
			ID:        ev.ID,
			TriggerID: ev.Trigger,
			Roles:     append([]source.Role(nil), ev.Roles...),
			Class:     ClassEvent,
		})
		span := trig.span.Clone(ev.ID)
		trig.events = append(trig.events, span)
		b.doc.addSpan(span)
	}
}

func (b *builder) addModifications() {
	for _, m := range b.src.Modifications {
		span, ok := b.doc.spans[m.Span]
		if !ok {
			b.sink.Post(messages.Errorf(errors.ErrCodeDataReference,
				"annotation %s, referenced from modification %s, does not exist", m.Span, m.ID))
			continue
		}
		span.Flags[m.Flag] = true
	}
}

func (b *builder) addEquivs() {
	for equivNo, eq := range b.src.Equivs {
		marker := "*" + strconv.Itoa(equivNo)
		var ok []*Span
		for _, id := range eq.Spans {
			if s, found := b.doc.spans[id]; found {
				ok = append(ok, s)
			}
		}
		if len(ok) < 2 {
			b.sink.Post(messages.Errorf(errors.ErrCodeData,
				"equivalence %s (%s) has %d resolvable members, need at least 2", marker, eq.Type, len(ok)))
			continue
		}
		sort.SliceStable(ok, func(i, j int) bool {
			return ok[i].From+ok[i].To < ok[j].From+ok[j].To
		})
		ids := make([]string, len(ok))
		for i, s := range ok {
			ids[i] = s.ID
		}
		for i := 1; i < len(ids); i++ {
			b.doc.addEventDesc(&EventDesc{
				Key:        marker + "*" + strconv.Itoa(i),
				ID:         ids[i-1],
				TriggerID:  ids[i-1],
				Roles:      []source.Role{{Type: eq.Type, Target: ids[i]}},
				Class:      ClassEquiv,
				LeftSpans:  ids[:i],
				RightSpans: ids[i:],
			})
		}
	}
}

func (b *builder) addRelations() {
	for _, rel := range b.src.Relations {
		b.doc.addEventDesc(&EventDesc{
			Key:       rel.ID,
			ID:        rel.Origin,
			TriggerID: rel.Origin,
			Roles:     []source.Role{{Type: rel.Type, Target: rel.Target}},
			Class:     ClassRelation,
		})
	}
}

func (b *builder) addAttributes() {
	for _, a := range b.src.Attributes {
		span, ok := b.doc.spans[a.Span]
		if !ok {
			b.sink.Post(messages.Errorf(errors.ErrCodeDataReference,
				"annotation %s, referenced from attribute %s, does not exist", a.Span, a.ID))
			continue
		}

		attrType, known := b.coll.Attribute(a.Name)
		var (
			value   collection.AttributeValue
			valueOK bool
			text    string
		)
		if known {
			value, valueOK = attrType.Value(a.Value)
			valText := a.Value
			if valueOK {
				valText = value.Name
			}
			if _, isBool := attrType.Bool(); isBool {
				text = attrType.DisplayName()
			} else {
				text = attrType.DisplayName() + ": " + valText
			}
		} else if a.Bool {
			text = a.Name
		} else {
			text = a.Name + ": " + a.Value
		}

		switch {
		case !known:
			b.sink.Post(messages.Warningf(errors.ErrCodeAttributeType,
				"attribute %s of %s: unknown attribute type %q", a.ID, a.Span, a.Name))
		case !valueOK:
			b.sink.Post(messages.Warningf(errors.ErrCodeAttributeType,
				"attribute %s of %s: unknown value %q for %s", a.ID, a.Span, a.Value, a.Name))
		case !value.HasVisual():
			b.sink.Post(messages.Warningf(errors.ErrCodeAttributeType,
				"attribute %s of %s: value %q has no visual", a.ID, a.Span, value.Name))
		}

		span.AttributeText = append(span.AttributeText, text)
		if _, seen := span.Attributes[a.Name]; !seen {
			span.AttributeOrder = append(span.AttributeOrder, a.Name)
		}
		span.Attributes[a.Name] = a.Value
		if valueOK && value.DashArray != "" {
			span.DashArray = value.DashArray
		}

		if a.Cue != "" {
			span.AttributeCues[a.Name] = a.Cue
			cue, ok := b.doc.spans[a.Cue]
			if !ok {
				b.sink.Post(messages.Errorf(errors.ErrCodeDataReference,
					"cue %s, referenced from attribute %s, does not exist", a.Cue, a.ID))
				continue
			}
			cue.Cue = CueClass
		}
	}
}

func attachComment(comment **Comment, notes, shadow *string, kind, text string) {
	if *comment == nil {
		*comment = &Comment{Kind: kind, Text: text}
	} else {
		(*comment).Kind = kind
		(*comment).Text += "\n" + text
	}
	if kind == AnnotatorNotes {
		*notes = text
	}
	if priority(kind) > priority(*shadow) {
		*shadow = kind
	}
}

func (b *builder) addComments() {
	for _, c := range b.src.Comments {
		if c.Target.IsSentence {
			text := c.Text
			if old, ok := b.doc.SentComment[c.Target.Sentence]; ok {
				text = old.Text + "\n" + text
			}
			b.doc.SentComment[c.Target.Sentence] = &Comment{Kind: c.Kind, Text: text}
			continue
		}

		id := c.Target.ID
		if trig, ok := b.triggers[id]; ok {
			for _, s := range trig.events {
				attachComment(&s.Comment, &s.AnnotatorNotes, &s.ShadowClass, c.Kind, c.Text)
			}
		} else if s, ok := b.doc.spans[id]; ok {
			attachComment(&s.Comment, &s.AnnotatorNotes, &s.ShadowClass, c.Kind, c.Text)
		} else if ed, ok := b.doc.eventDescs[id]; ok {
			attachComment(&ed.Comment, &ed.AnnotatorNotes, &ed.ShadowClass, c.Kind, c.Text)
		} else {
			b.sink.Post(messages.Errorf(errors.ErrCodeDataReference,
				"annotation %s, referenced from a %s comment, does not exist", id, c.Kind))
		}
	}
}

func (b *builder) addArcs() {
	for _, ed := range b.doc.eventOrder {
		origin, ok := b.doc.spans[ed.ID]
		if !ok {
			b.sink.Post(messages.Errorf(errors.ErrCodeDataReference,
				"trigger for event %s not found", ed.Key))
			continue
		}
		for roleNo, role := range ed.Roles {
			target, ok := b.doc.spans[role.Target]
			if !ok {
				b.sink.Post(messages.Errorf(errors.ErrCodeDataReference,
					"%s, referenced from %s, does not exist", role.Target, ed.Key))
				continue
			}
			dist := origin.Chunk.Index - target.Chunk.Index
			if dist < 0 {
				dist = -dist
			}
			arc := &Arc{
				ID:           ed.Key + "/" + strconv.Itoa(roleNo),
				Origin:       ed.ID,
				Target:       role.Target,
				OriginSpan:   origin,
				TargetSpan:   target,
				Dist:         dist,
				Type:         role.Type,
				ShadowClass:  ed.ShadowClass,
				Equiv:        ed.Class == ClassEquiv,
				Relation:     ed.Class == ClassRelation,
				EventDescKey: ed.Key,
			}
			if arc.Equiv {
				ed.EquivArc = arc
			}
			origin.TotalDist += dist
			origin.NumArcs++
			target.TotalDist += dist
			target.NumArcs++
			b.doc.Arcs = append(b.doc.Arcs, arc)
			target.Incoming = append(target.Incoming, arc)
			origin.Outgoing = append(origin.Outgoing, arc)
		}
	}
}
