package source

import (
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/matzehuels/spantower/pkg/errors"
)

// Decode parses a JSON payload. Records with the wrong shape fail the whole
// decode with ErrCodeInvalidFormat; references between records are not
// checked here.
func Decode(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "payload is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "payload must be a JSON object")
	}

	d := &Document{
		Text:          root.Get("text").String(),
		SentenceCount: int(root.Get("sentence_count").Int()),
		MTime:         root.Get("mtime").Float(),
	}

	var err error
	if d.Entities, err = decodeTextBounds(root.Get("entities"), "entities"); err != nil {
		return nil, err
	}
	if d.Triggers, err = decodeTextBounds(root.Get("triggers"), "triggers"); err != nil {
		return nil, err
	}
	if d.Events, err = decodeEvents(root.Get("events")); err != nil {
		return nil, err
	}
	if d.Relations, err = decodeRelations(root.Get("relations")); err != nil {
		return nil, err
	}
	if d.Equivs, err = decodeEquivs(root.Get("equivs")); err != nil {
		return nil, err
	}
	if d.Attributes, err = decodeAttributes(root.Get("attributes")); err != nil {
		return nil, err
	}
	if d.Modifications, err = decodeModifications(root.Get("modifications")); err != nil {
		return nil, err
	}
	if d.Comments, err = decodeComments(root.Get("comments")); err != nil {
		return nil, err
	}
	if d.TokenOffsets, err = decodeOffsets(root.Get("token_offsets"), "token_offsets"); err != nil {
		return nil, err
	}
	if d.SentenceOffsets, err = decodeOffsets(root.Get("sentence_offsets"), "sentence_offsets"); err != nil {
		return nil, err
	}
	if d.Marks, err = decodeMarks(root.Get("marks")); err != nil {
		return nil, err
	}
	return d, nil
}

func badRecord(field string, i int, format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidFormat, "%s[%d]: %s", field, i, fmt.Sprintf(format, args...))
}

// records iterates the tuples of an array field.
func records(v gjson.Result, field string, minLen int, fn func(i int, t []gjson.Result) error) error {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	if !v.IsArray() {
		return errors.New(errors.ErrCodeInvalidFormat, "%s must be an array", field)
	}
	for i, rec := range v.Array() {
		if !rec.IsArray() {
			return badRecord(field, i, "record must be an array")
		}
		t := rec.Array()
		if len(t) < minLen {
			return badRecord(field, i, "expected at least %d elements, got %d", minLen, len(t))
		}
		if err := fn(i, t); err != nil {
			return err
		}
	}
	return nil
}

func intValue(v gjson.Result) (int, bool) {
	switch v.Type {
	case gjson.Number:
		return int(v.Int()), true
	case gjson.String:
		n, err := strconv.Atoi(v.Str)
		return n, err == nil
	}
	return 0, false
}

// decodeTextBounds accepts [id, type, from, to] and the fragmented form
// [id, type, [[from, to], ...]], which is reduced to its outer extent.
func decodeTextBounds(v gjson.Result, field string) ([]TextBound, error) {
	var out []TextBound
	err := records(v, field, 3, func(i int, t []gjson.Result) error {
		tb := TextBound{ID: t[0].String(), Type: t[1].String()}
		if t[2].IsArray() {
			frags := t[2].Array()
			if len(frags) == 0 {
				return badRecord(field, i, "no offsets")
			}
			first, last := frags[0].Array(), frags[len(frags)-1].Array()
			if len(first) != 2 || len(last) != 2 {
				return badRecord(field, i, "offsets must be [from, to] pairs")
			}
			tb.From, tb.To = int(first[0].Int()), int(last[1].Int())
		} else {
			if len(t) < 4 {
				return badRecord(field, i, "expected [id, type, from, to]")
			}
			from, ok1 := intValue(t[2])
			to, ok2 := intValue(t[3])
			if !ok1 || !ok2 {
				return badRecord(field, i, "offsets must be integers")
			}
			tb.From, tb.To = from, to
		}
		if tb.ID == "" {
			return badRecord(field, i, "empty id")
		}
		out = append(out, tb)
		return nil
	})
	return out, err
}

func decodeEvents(v gjson.Result) ([]Event, error) {
	var out []Event
	err := records(v, "events", 2, func(i int, t []gjson.Result) error {
		ev := Event{ID: t[0].String(), Trigger: t[1].String()}
		if len(t) > 2 {
			for j, r := range t[2].Array() {
				pair := r.Array()
				if len(pair) != 2 {
					return badRecord("events", i, "role %d must be [type, target]", j)
				}
				ev.Roles = append(ev.Roles, Role{Type: pair[0].String(), Target: pair[1].String()})
			}
		}
		out = append(out, ev)
		return nil
	})
	return out, err
}

func decodeRelations(v gjson.Result) ([]Relation, error) {
	var out []Relation
	err := records(v, "relations", 4, func(i int, t []gjson.Result) error {
		out = append(out, Relation{
			ID:     t[0].String(),
			Type:   t[1].String(),
			Origin: t[2].String(),
			Target: t[3].String(),
		})
		return nil
	})
	return out, err
}

func decodeEquivs(v gjson.Result) ([]Equiv, error) {
	var out []Equiv
	err := records(v, "equivs", 2, func(i int, t []gjson.Result) error {
		eq := Equiv{Marker: t[0].String(), Type: t[1].String()}
		for _, s := range t[2:] {
			eq.Spans = append(eq.Spans, s.String())
		}
		out = append(out, eq)
		return nil
	})
	return out, err
}

func decodeAttributes(v gjson.Result) ([]Attribute, error) {
	var out []Attribute
	err := records(v, "attributes", 3, func(i int, t []gjson.Result) error {
		a := Attribute{ID: t[0].String(), Name: t[1].String(), Span: t[2].String()}
		if len(t) > 3 {
			a.Value = t[3].String()
			a.Bool = t[3].Type == gjson.True
		} else {
			a.Value, a.Bool = "true", true
		}
		if len(t) > 4 && t[4].Type != gjson.Null {
			a.Cue = t[4].String()
		}
		out = append(out, a)
		return nil
	})
	return out, err
}

func decodeModifications(v gjson.Result) ([]Modification, error) {
	var out []Modification
	err := records(v, "modifications", 3, func(i int, t []gjson.Result) error {
		out = append(out, Modification{ID: t[0].String(), Flag: t[1].String(), Span: t[2].String()})
		return nil
	})
	return out, err
}

func decodeComments(v gjson.Result) ([]Comment, error) {
	var out []Comment
	err := records(v, "comments", 3, func(i int, t []gjson.Result) error {
		c := Comment{Kind: t[1].String(), Text: t[2].String()}
		if t[0].IsArray() {
			ref := t[0].Array()
			if len(ref) != 2 || ref[0].String() != "sent" {
				return badRecord("comments", i, "target must be an id or [\"sent\", n]")
			}
			n, ok := intValue(ref[1])
			if !ok {
				return badRecord("comments", i, "sentence must be an integer")
			}
			c.Target = CommentTarget{Sentence: n, IsSentence: true}
		} else {
			c.Target = CommentTarget{ID: t[0].String()}
		}
		out = append(out, c)
		return nil
	})
	return out, err
}

func decodeOffsets(v gjson.Result, field string) ([]Offset, error) {
	var out []Offset
	err := records(v, field, 2, func(i int, t []gjson.Result) error {
		from, ok1 := intValue(t[0])
		to, ok2 := intValue(t[1])
		if !ok1 || !ok2 {
			return badRecord(field, i, "offsets must be integers")
		}
		out = append(out, Offset{from, to})
		return nil
	})
	return out, err
}

func decodeMarks(v gjson.Result) (Marks, error) {
	if !v.Exists() || v.Type == gjson.Null {
		return nil, nil
	}
	if !v.IsObject() {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "marks must be an object")
	}
	marks := make(Marks)
	var err error
	v.ForEach(func(key, value gjson.Result) bool {
		kind := key.String()
		err = records(value, "marks."+kind, 1, func(i int, t []gjson.Result) error {
			m := make(Mark, len(t))
			for j, part := range t {
				m[j] = part.String()
			}
			marks[kind] = append(marks[kind], m)
			return nil
		})
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return marks, nil
}
