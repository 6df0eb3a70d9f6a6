// Package grammar compiles a JSON Schema into a regular expression
// whose language is exactly the set of JSON text renderings the
// schema permits.
package grammar

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jmorganca/outlines/envconfig"
	"github.com/jmorganca/outlines/grammar/jsonschema"
)

// ErrUnsupportedSchema is returned when a schema uses a keyword or
// combination of keywords that this package does not express as a
// regular expression: an unconstrained value (no type, properties or
// items), an unknown type, an unresolved "$ref", or an allOf without
// exactly one constraining branch.
var ErrUnsupportedSchema = errors.New("grammar: unsupported schema")

// ErrRecursionUnsupported is returned when a schema's "$ref" graph is
// cyclic: a regular expression, built by finite inlining, cannot
// represent a recursive structure.
var ErrRecursionUnsupported = errors.New("grammar: recursive $ref unsupported")

// BuildRegex compiles schemaJSON into a regex pattern. whitespace is
// spliced between JSON structural tokens (commas, colons, braces,
// brackets); if empty, envconfig.DefaultWhitespace is used (Whitespace
// unless OUTLINES_WHITESPACE_PATTERN overrides it).
func BuildRegex(schemaJSON []byte, whitespace string) (string, error) {
	var s *jsonschema.Schema
	if err := json.Unmarshal(schemaJSON, &s); err != nil {
		return "", fmt.Errorf("%w: %v", jsonschema.ErrInvalidSchema, err)
	}
	if s == nil {
		return "", fmt.Errorf("%w: schema is null", jsonschema.ErrInvalidSchema)
	}
	if whitespace == "" {
		whitespace = envconfig.DefaultWhitespace
	}

	b := &regexBuilder{ws: whitespace, defs: s.Defs, onRef: map[string]bool{}}
	return b.build(s)
}

type regexBuilder struct {
	ws    string
	defs  map[string]*jsonschema.Schema
	onRef map[string]bool // $ref names currently being expanded
}

func (b *regexBuilder) build(s *jsonschema.Schema) (string, error) {
	switch {
	case s.Ref != "":
		return b.buildRef(s.Ref)
	case s.Const != nil:
		return regexp.QuoteMeta(string(*s.Const)), nil
	case len(s.Enum) > 0:
		return b.buildEnum(s.Enum)
	case len(s.AnyOf) > 0:
		return b.buildAnyOf(s.AnyOf)
	case len(s.OneOf) > 0:
		return b.buildAnyOf(s.OneOf)
	case len(s.AllOf) > 0:
		return b.buildAllOf(s.AllOf)
	}

	switch typ := s.EffectiveType(); typ {
	case "null":
		return Null, nil
	case "boolean":
		return Boolean, nil
	case "integer":
		return b.buildInteger(s), nil
	case "number":
		return b.buildNumber(s), nil
	case "string":
		return b.buildString(s)
	case "array":
		return b.buildArray(s)
	case "object":
		return b.buildObject(s)
	case "value":
		return "", fmt.Errorf("%s: %w: unconstrained value", s.Name, ErrUnsupportedSchema)
	default:
		return "", fmt.Errorf("%s: %w: type %q", s.Name, ErrUnsupportedSchema, typ)
	}
}

func (b *regexBuilder) buildRef(ref string) (string, error) {
	name := strings.TrimPrefix(ref, "#/$defs/")
	name = strings.TrimPrefix(name, "#/definitions/")
	if b.onRef[name] {
		return "", fmt.Errorf("%s: %w", ref, ErrRecursionUnsupported)
	}
	target, ok := b.defs[name]
	if !ok {
		return "", fmt.Errorf("%s: %w: unresolved $ref", ref, ErrUnsupportedSchema)
	}
	b.onRef[name] = true
	defer delete(b.onRef, name)
	return b.build(target)
}

func (b *regexBuilder) buildEnum(vals []json.RawMessage) (string, error) {
	alts := make([]string, len(vals))
	for i, v := range vals {
		alts[i] = regexp.QuoteMeta(string(v))
	}
	return "(?:" + strings.Join(alts, "|") + ")", nil
}

func (b *regexBuilder) buildAnyOf(branches []*jsonschema.Schema) (string, error) {
	alts := make([]string, len(branches))
	for i, s := range branches {
		frag, err := b.build(s)
		if err != nil {
			return "", err
		}
		alts[i] = frag
	}
	return "(?:" + strings.Join(alts, "|") + ")", nil
}

// buildAllOf supports only the shape that is actually expressible by
// a regular expression: a single constraining branch, optionally
// alongside branches that name no type, properties, items, "$ref",
// const, enum or combinator (e.g. a bare {}). Those other branches
// are ignored, including any other keywords they carry (such as a
// lone "required"); a bare {"type": "object"} counts as constraining.
func (b *regexBuilder) buildAllOf(branches []*jsonschema.Schema) (string, error) {
	var real []*jsonschema.Schema
	for _, s := range branches {
		if s.EffectiveType() == "value" && s.Ref == "" && s.Const == nil && len(s.Enum) == 0 &&
			len(s.AnyOf) == 0 && len(s.OneOf) == 0 && len(s.AllOf) == 0 {
			continue
		}
		real = append(real, s)
	}
	if len(real) != 1 {
		return "", fmt.Errorf("allOf: %w: need exactly one constraining branch, got %d", ErrUnsupportedSchema, len(real))
	}
	return b.build(real[0])
}

// unboundedSentinel stands in for "no limit" on one side of a
// minimum/maximum pair, when only the other side is set. JSON numbers
// have no inherent bound, but a regex must pick some finite digit
// width to stop expanding at; 10^15 comfortably covers every bound a
// real schema writes while keeping the generated pattern a sane size.
const unboundedSentinel = int64(1e15)

func (b *regexBuilder) buildInteger(s *jsonschema.Schema) string {
	if s.Minimum == nil && s.Maximum == nil {
		return Integer
	}
	lo, hi := -unboundedSentinel, unboundedSentinel
	if s.Minimum != nil {
		lo = int64(*s.Minimum)
	}
	if s.Maximum != nil {
		hi = int64(*s.Maximum)
	}
	return integerRangeRegex(lo, hi)
}

// buildNumber bounds the integer part of a JSON number literal to
// [Minimum, Maximum] (when either is set) and leaves the fractional
// part and exponent unconstrained.
func (b *regexBuilder) buildNumber(s *jsonschema.Schema) string {
	if s.Minimum == nil && s.Maximum == nil {
		return Number
	}
	lo, hi := -unboundedSentinel, unboundedSentinel
	if s.Minimum != nil {
		lo = int64(*s.Minimum)
	}
	if s.Maximum != nil {
		hi = int64(*s.Maximum)
	}
	return integerRangeRegex(lo, hi) + `(\.[0-9]+)?([eE][+-]?[0-9]+)?`
}

func (b *regexBuilder) buildString(s *jsonschema.Schema) (string, error) {
	if len(s.Enum) > 0 {
		return b.buildEnum(s.Enum)
	}
	if atom, ok := formatAtoms[s.Format]; ok {
		return atom, nil
	}
	if s.MinLength == 0 && s.MaxLength == 0 {
		return String, nil
	}
	max := "" // unbounded
	if s.MaxLength > 0 {
		max = fmt.Sprint(s.MaxLength)
	}
	return fmt.Sprintf(`"%s{%d,%s}"`, stringInnerChar, s.MinLength, max), nil
}

func (b *regexBuilder) buildArray(s *jsonschema.Schema) (string, error) {
	switch {
	case len(s.PrefixItems) > 0:
		parts := make([]string, len(s.PrefixItems))
		for i, item := range s.PrefixItems {
			frag, err := b.build(item)
			if err != nil {
				return "", err
			}
			parts[i] = frag
		}
		sep := b.ws + "," + b.ws
		body := strings.Join(parts, sep)
		if s.Items != nil {
			itemFrag, err := b.build(s.Items)
			if err != nil {
				return "", err
			}
			body += "(?:" + sep + itemFrag + ")*"
		}
		return "\\[" + b.ws + body + b.ws + "\\]", nil

	case s.Items != nil:
		itemFrag, err := b.build(s.Items)
		if err != nil {
			return "", err
		}
		return b.repeatedArray(itemFrag, s.MinItems, s.MaxItems), nil

	default:
		// No declared item shape: fall back to the depth-bounded set
		// of legal element types, the same way an unconstrained array
		// is handled for schemas with no "items" keyword at all.
		itemFrag := "(?:" + strings.Join(b.genericArrayValueTypes(defaultContainerDepth), "|") + ")"
		return b.repeatedArray(itemFrag, s.MinItems, s.MaxItems), nil
	}
}

// repeatedArray renders "[" ws item (, ws item){tailMin,tailMax} ws "]",
// wrapping the whole body optional when minItems is 0 so an empty
// array is still permitted.
func (b *regexBuilder) repeatedArray(itemFrag string, minItems, maxItems int) string {
	sep := b.ws + "," + b.ws
	tailMin := max(minItems-1, 0)
	bound := fmt.Sprintf("{%d,}", tailMin)
	if maxItems > 0 {
		bound = fmt.Sprintf("{%d,%d}", tailMin, maxItems-1)
	}
	body := itemFrag + fmt.Sprintf("(?:%s%s)%s", sep, itemFrag, bound)
	if minItems == 0 {
		body = "(?:" + body + ")?"
	}
	return "\\[" + b.ws + body + b.ws + "\\]"
}

// defaultContainerDepth bounds how many levels of nested generic
// object/array an unconstrained container schema may recurse through.
const defaultContainerDepth = 2

// genericObjectValueTypes lists the value types a generic (no
// declared properties) object's entries may take: any JSON scalar,
// plus, while depth remains, a nested generic object or array.
func (b *regexBuilder) genericObjectValueTypes(depth int) []string {
	types := []string{String, Number, Boolean, Null}
	if depth > 0 {
		types = append(types, b.genericObjectPattern(depth-1), b.genericArrayPattern(depth-1))
	}
	return types
}

// genericArrayValueTypes lists the element types a generic (no
// declared items) array may hold: any JSON scalar, plus, while depth
// remains, a nested generic object or array.
func (b *regexBuilder) genericArrayValueTypes(depth int) []string {
	types := []string{Boolean, Null, Number, Integer, String}
	if depth > 0 {
		types = append(types, b.genericObjectPattern(depth-1), b.genericArrayPattern(depth-1))
	}
	return types
}

// genericObjectPattern renders an object with no declared properties:
// zero or more "key":value pairs, any JSON scalar (or, while depth
// remains, a nested generic container) as the value.
func (b *regexBuilder) genericObjectPattern(depth int) string {
	value := "(?:" + strings.Join(b.genericObjectValueTypes(depth), "|") + ")"
	keyValue := String + b.ws + ":" + b.ws + value
	successor := b.ws + "," + b.ws + keyValue
	return `\{` + b.ws + "(?:" + keyValue + "(?:" + successor + ")*)?" + b.ws + `\}`
}

// genericArrayPattern renders an array with no declared item schema:
// zero or more elements, any JSON scalar (or, while depth remains, a
// nested generic container).
func (b *regexBuilder) genericArrayPattern(depth int) string {
	return b.repeatedArray("(?:"+strings.Join(b.genericArrayValueTypes(depth), "|")+")", 0, 0)
}

// buildObject compiles an object schema into a regex over its
// declared Properties, in schema order. Property order is fixed
// rather than permuted (see DESIGN.md: this resolves the "required
// keys" Open Question by sidestepping the combinatorial explosion of
// unordered-key matching entirely), but presence/absence of each
// optional property is still tracked precisely via a two-state
// (something-emitted-yet or not) dynamic-programming pass, so commas
// land correctly regardless of which optional properties are
// skipped.
func (b *regexBuilder) buildObject(s *jsonschema.Schema) (string, error) {
	if len(s.Properties) == 0 {
		// additionalProperties:false with no declared properties means
		// the object must be exactly empty; otherwise fall back to the
		// depth-bounded set of legal key/value shapes.
		if s.AdditionalProperties != nil && !*s.AdditionalProperties {
			return `\{` + b.ws + `\}`, nil
		}
		return b.genericObjectPattern(defaultContainerDepth), nil
	}

	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
	}

	type member struct {
		entry    string // `"key" <ws> : <ws> value`, no separator
		required bool
	}
	members := make([]member, len(s.Properties))
	for i, p := range s.Properties {
		frag, err := b.build(p)
		if err != nil {
			return "", fmt.Errorf("property %q: %w", p.Name, err)
		}
		key := regexp.QuoteMeta(`"` + p.Name + `"`)
		members[i] = member{
			entry:    key + b.ws + ":" + b.ws + frag,
			required: required[p.Name],
		}
	}

	// tailTrue[i]/tailFalse[i] is the regex for members[i:], given
	// that something has/hasn't already been emitted for an earlier
	// member (and so needs/doesn't-need a leading comma on its own
	// first emitted member).
	n := len(members)
	tailTrue := make([]string, n+1)
	tailFalse := make([]string, n+1)
	for i := n - 1; i >= 0; i-- {
		m := members[i]
		entryTrue := b.ws + "," + b.ws + m.entry + tailTrue[i+1]
		entryFirst := m.entry + tailTrue[i+1]
		if m.required {
			tailTrue[i] = entryTrue
			tailFalse[i] = entryFirst
		} else {
			tailTrue[i] = "(?:" + b.ws + "," + b.ws + m.entry + ")?" + tailTrue[i+1]
			if tailFalse[i+1] == "" {
				tailFalse[i] = "(?:" + entryFirst + ")?"
			} else {
				tailFalse[i] = "(?:" + entryFirst + "|" + tailFalse[i+1] + ")"
			}
		}
	}

	return `\{` + b.ws + tailFalse[0] + b.ws + `\}`, nil
}
