package expr

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/vk/weavego/internal/scope"
)

var (
	delimiters = regexp.MustCompile(`(?s)\{\{(.*?)\}\}`)
	numericRef = regexp.MustCompile(`&#(?:[0-9]{1,7}|[xX][0-9a-fA-F]{1,6});`)
)

// Segment is one piece of an interpolated value: literal text or an
// expression.
type Segment struct {
	Literal string
	Expr    *Compiled
}

// Template is raw attribute or text content split into literal and
// expression segments.
type Template struct {
	Raw      string
	Segments []Segment
	Refs     *Container
}

// HasExpressions reports whether the raw value contains at least one
// delimited expression.
func (t *Template) HasExpressions() bool {
	for _, s := range t.Segments {
		if s.Expr != nil {
			return true
		}
	}
	return false
}

// HasDelimiters is a quick scan used before compiling.
func HasDelimiters(raw string) bool {
	return strings.Contains(raw, "{{") && delimiters.MatchString(raw)
}

// CompileTemplate splits raw into segments and compiles every `{{ expr }}`.
func (e *Evaluator) CompileTemplate(raw string) (*Template, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if t, ok := e.templates[raw]; ok {
		return t, nil
	}

	t := &Template{Raw: raw, Refs: NewContainer()}
	last := 0
	for _, m := range delimiters.FindAllStringSubmatchIndex(raw, -1) {
		if m[0] > last {
			t.Segments = append(t.Segments, Segment{Literal: raw[last:m[0]]})
		}
		c, err := e.compileLocked(raw[m[2]:m[3]])
		if err != nil {
			return nil, err
		}
		t.Segments = append(t.Segments, Segment{Expr: c})
		t.Refs.Add(c.Expr)
		last = m[1]
	}
	if last < len(raw) {
		t.Segments = append(t.Segments, Segment{Literal: raw[last:]})
	}

	e.templates[raw] = t
	return t, nil
}

// Render evaluates every expression segment against layer and joins the
// result. Numeric character references produced by expressions are decoded.
func (e *Evaluator) Render(t *Template, layer *scope.Layer) (string, error) {
	var b strings.Builder
	for _, s := range t.Segments {
		if s.Expr == nil {
			b.WriteString(s.Literal)
			continue
		}
		v, err := e.EvalCompiled(s.Expr, layer)
		if err != nil {
			return "", err
		}
		b.WriteString(DecodeNumericRefs(Stringify(v)))
	}
	return b.String(), nil
}

// Interpolate is CompileTemplate followed by Render.
func (e *Evaluator) Interpolate(raw string, layer *scope.Layer) (string, error) {
	t, err := e.CompileTemplate(raw)
	if err != nil {
		return "", fmt.Errorf("failed to compile %q: %w", raw, err)
	}
	return e.Render(t, layer)
}

// DecodeNumericRefs replaces `&#NN;` and `&#xHH;` with the characters they
// denote. Named entities are left alone.
func DecodeNumericRefs(s string) string {
	if !strings.Contains(s, "&#") {
		return s
	}
	return numericRef.ReplaceAllStringFunc(s, html.UnescapeString)
}
