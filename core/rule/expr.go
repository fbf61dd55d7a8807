package rule

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/huangsam/scorecard/schema"
)

// Lookup resolves a field reference against the record being evaluated.
type Lookup func(field string) schema.Value

// Expr is a parsed condition. It is immutable and safe to share.
type Expr interface {
	Eval(lookup Lookup) bool
	String() string
	fields(into map[string]struct{})
}

type operandKind int

const (
	fieldOperand operandKind = iota
	numberOperand
	textOperand
)

type operand struct {
	kind  operandKind
	name  string // field name
	value schema.Value
}

func (o operand) resolve(lookup Lookup) schema.Value {
	if o.kind == fieldOperand {
		return lookup(o.name)
	}
	return o.value
}

func (o operand) String() string {
	switch o.kind {
	case fieldOperand:
		return o.name
	case textOperand:
		return strconv.Quote(o.value.Str)
	default:
		return o.value.String()
	}
}

type compareExpr struct {
	op          string
	left, right operand
}

type truthExpr struct{ operand operand }

type notExpr struct{ inner Expr }

type logicExpr struct {
	and         bool
	left, right Expr
}

// Eval compares both sides. A missing field never satisfies a comparison.
func (e *compareExpr) Eval(lookup Lookup) bool {
	l := e.left.resolve(lookup)
	r := e.right.resolve(lookup)
	if l.Missing() || r.Missing() {
		return false
	}
	if ln, rn, ok := bothNumbers(l, r); ok {
		return compareNumbers(e.op, ln, rn)
	}
	if l.Kind == schema.KindText && r.Kind == schema.KindText {
		c := strings.Compare(strings.ToLower(l.Str), strings.ToLower(r.Str))
		return compareOrdering(e.op, c)
	}
	// Mixed kinds that cannot be read as numbers are only ever unequal.
	return e.op == "!="
}

func (e *compareExpr) String() string {
	return fmt.Sprintf("%s %s %s", e.left, e.op, e.right)
}

func (e *compareExpr) fields(into map[string]struct{}) {
	for _, o := range []operand{e.left, e.right} {
		if o.kind == fieldOperand {
			into[o.name] = struct{}{}
		}
	}
}

func (e *truthExpr) Eval(lookup Lookup) bool {
	v := e.operand.resolve(lookup)
	switch v.Kind {
	case schema.KindNumber:
		return v.Num != 0 && !math.IsNaN(v.Num)
	case schema.KindText:
		b, err := strconv.ParseBool(strings.TrimSpace(v.Str))
		if err == nil {
			return b
		}
		return v.Str != ""
	default:
		return false
	}
}

func (e *truthExpr) String() string { return e.operand.String() }

func (e *truthExpr) fields(into map[string]struct{}) {
	if e.operand.kind == fieldOperand {
		into[e.operand.name] = struct{}{}
	}
}

func (e *notExpr) Eval(lookup Lookup) bool { return !e.inner.Eval(lookup) }

func (e *notExpr) String() string { return "NOT " + e.inner.String() }

func (e *notExpr) fields(into map[string]struct{}) { e.inner.fields(into) }

func (e *logicExpr) Eval(lookup Lookup) bool {
	if e.and {
		return e.left.Eval(lookup) && e.right.Eval(lookup)
	}
	return e.left.Eval(lookup) || e.right.Eval(lookup)
}

func (e *logicExpr) String() string {
	op := "OR"
	if e.and {
		op = "AND"
	}
	return fmt.Sprintf("(%s %s %s)", e.left, op, e.right)
}

func (e *logicExpr) fields(into map[string]struct{}) {
	e.left.fields(into)
	e.right.fields(into)
}

// Fields returns the sorted field names referenced by an expression.
func Fields(e Expr) []string {
	set := make(map[string]struct{})
	e.fields(set)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// bothNumbers reads both values as numbers, accepting numeric text and
// boolean words.
func bothNumbers(l, r schema.Value) (float64, float64, bool) {
	ln, lok := asNumber(l)
	rn, rok := asNumber(r)
	return ln, rn, lok && rok
}

func asNumber(v schema.Value) (float64, bool) {
	switch v.Kind {
	case schema.KindNumber:
		return v.Num, true
	case schema.KindText:
		s := strings.TrimSpace(v.Str)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
		switch strings.ToLower(s) {
		case "true", "yes":
			return 1, true
		case "false", "no":
			return 0, true
		}
	}
	return 0, false
}

func compareNumbers(op string, l, r float64) bool {
	switch op {
	case "<":
		return l < r
	case ">":
		return l > r
	case "<=":
		return l <= r
	case ">=":
		return l >= r
	case "==":
		return l == r
	case "!=":
		return l != r
	}
	return false
}

func compareOrdering(op string, c int) bool {
	switch op {
	case "<":
		return c < 0
	case ">":
		return c > 0
	case "<=":
		return c <= 0
	case ">=":
		return c >= 0
	case "==":
		return c == 0
	case "!=":
		return c != 0
	}
	return false
}
