package core

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/huangsam/scorecard/schema"
)

// synonymGroups lists field names that mean the same thing across data
// sources. Names are stored in their folded form (see foldKey).
var synonymGroups = [][]string{
	{"creditscore", "score", "ficoscore", "fico", "bureauscore"},
	{"income", "monthlyincome", "salaryamount", "salary"},
	{"debttoincome", "dti", "debttoincomeratio"},
	{"loanamount", "requestedamount", "amount"},
	{"employmentyears", "yearsemployed", "employmentlength"},
	{"age", "applicantage"},
}

// synonyms maps a folded name to the other members of its group.
var synonyms = func() map[string][]string {
	out := make(map[string][]string)
	for _, group := range synonymGroups {
		for _, name := range group {
			for _, other := range group {
				if other != name {
					out[name] = append(out[name], other)
				}
			}
		}
	}
	return out
}()

// ResolveVariable extracts a variable's value from a record and coerces it
// per the variable type. Candidates are tried in order: the name itself and
// its aliases exactly, then their snake_case and camelCase spellings, then a
// case and separator insensitive match, then the synonym table. A field that
// cannot be found, or is null or blank, yields schema.NotFound.
func ResolveVariable(record schema.InputRecord, name string, typ schema.VariableType, aliases ...string) schema.Value {
	raw, ok := lookupRaw(record, append([]string{name}, aliases...))
	if !ok {
		return schema.NotFound
	}
	return coerce(raw, typ)
}

// resolveField is the untyped lookup rule conditions use: numbers and numeric
// text become numbers, everything else stays text.
func resolveField(record schema.InputRecord, field string) schema.Value {
	raw, ok := lookupRaw(record, []string{field})
	if !ok {
		return schema.NotFound
	}
	v := coerce(raw, schema.Continuous)
	if v.Kind == schema.KindText {
		return coerce(raw, schema.Categorical)
	}
	return v
}

func lookupRaw(record schema.InputRecord, names []string) (any, bool) {
	if len(record) == 0 {
		return nil, false
	}

	// Exact spellings.
	for _, n := range names {
		for _, variant := range []string{n, toSnake(n), toCamel(n)} {
			if v, ok := record[variant]; ok {
				return v, true
			}
		}
	}

	folded := foldedIndex(record)

	// Case and separator insensitive.
	for _, n := range names {
		if key, ok := folded[foldKey(n)]; ok {
			return record[key], true
		}
	}

	// Synonyms.
	for _, n := range names {
		for _, syn := range synonyms[foldKey(n)] {
			if key, ok := folded[syn]; ok {
				return record[key], true
			}
		}
	}
	return nil, false
}

// foldedIndex maps folded keys to record keys. When several record keys fold
// the same way the lexically smallest wins, so resolution never depends on
// map iteration order.
func foldedIndex(record schema.InputRecord) map[string]string {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	index := make(map[string]string, len(keys))
	for _, k := range keys {
		f := foldKey(k)
		if _, seen := index[f]; !seen {
			index[f] = k
		}
	}
	return index
}

// foldKey lowercases a name and drops separators: "Monthly_Income",
// "monthlyIncome" and "monthly-income" all fold to "monthlyincome".
func foldKey(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		switch r {
		case '_', '-', ' ', '.':
			continue
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}

func toSnake(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func toCamel(name string) string {
	var sb strings.Builder
	upper := false
	for _, r := range name {
		if r == '_' || r == '-' {
			upper = true
			continue
		}
		if upper {
			sb.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// coerce turns a raw scalar into a typed value. Continuous variables read
// numeric text as numbers; text that is not numeric stays text so the scorer
// can flag it as invalid.
func coerce(raw any, typ schema.VariableType) schema.Value {
	categorical := typ == schema.Categorical
	switch v := raw.(type) {
	case nil:
		return schema.NotFound
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return schema.NotFound
		}
		if categorical {
			return schema.TextValue(s)
		}
		if f, ok := parseNumber(s); ok {
			return schema.NumberValue(f)
		}
		return schema.TextValue(s)
	case bool:
		if categorical {
			return schema.TextValue(strconv.FormatBool(v))
		}
		if v {
			return schema.NumberValue(1)
		}
		return schema.NumberValue(0)
	case json.Number:
		return coerce(v.String(), typ)
	}

	f, ok := toFloat(raw)
	if !ok {
		return schema.NotFound
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return schema.TextValue(strconv.FormatFloat(f, 'f', -1, 64))
	}
	if categorical {
		return schema.TextValue(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return schema.NumberValue(f)
}

// parseNumber accepts plain numbers plus thousands separators, a leading
// currency sign and a trailing percent sign.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// isScalar reports whether a raw record value is something a scorecard can
// read. Anything else makes the whole record malformed.
func isScalar(raw any) bool {
	switch raw.(type) {
	case nil, string, bool, json.Number:
		return true
	}
	_, ok := toFloat(raw)
	return ok
}
