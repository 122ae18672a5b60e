package httpvalidator

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/erraggy/oasguard/contract"
)

// findingSink receives findings flushed from a schema walk. Both result
// types implement it.
type findingSink interface {
	addError(ValidationError)
	addWarning(ValidationError)
}

// redactedLocation reports whether findings at loc must not echo the
// offending value. Headers and cookies routinely carry credentials.
func redactedLocation(loc Location) bool {
	switch loc {
	case LocationHeader, LocationCookie, LocationResponseHeader:
		return true
	}
	return false
}

// guardKey identifies one (value, schema node) pair on the active walk
// stack. Container values key by their data pointer, scalars by value;
// the dynamic type of the value component keeps a scalar from ever
// colliding with a container's uintptr.
type guardKey struct {
	value any
	node  *contract.SchemaNode
}

func guardValue(value any) any {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return rv.Pointer()
	}
	if rv.IsValid() && !rv.Comparable() {
		// Uncomparable values cannot key the guard. Hand back a fresh
		// pointer so the walk proceeds unguarded instead of panicking.
		return new(int)
	}
	return value
}

// schemaWalk is the per-call scratch state for validating one value tree
// against one schema graph. It accumulates findings locally; callers
// flush them into a result and return the walk to the pool. A walk is
// never shared between goroutines.
type schemaWalk struct {
	v        *Validator
	location Location
	redact   bool
	errors   []ValidationError
	warnings []ValidationError

	// guard holds the (value, node) pairs currently on the walk stack.
	// Schema graphs may be cyclic; re-entering a pair already on the
	// stack is treated as satisfied rather than recursed into.
	guard map[guardKey]struct{}
}

func (w *schemaWalk) flush(sink findingSink) {
	for _, e := range w.errors {
		sink.addError(e)
	}
	for _, e := range w.warnings {
		sink.addWarning(e)
	}
}

func (w *schemaWalk) report(path FieldPath, reason ReasonCode, msg string, value any) {
	w.errors = append(w.errors, ValidationError{
		Location: w.location,
		Path:     path,
		Reason:   reason,
		Message:  msg,
		Value:    w.echoValue(value),
	})
}

func (w *schemaWalk) warn(path FieldPath, reason ReasonCode, msg string, value any) {
	if !w.v.cfg.includeWarnings {
		return
	}
	w.warnings = append(w.warnings, ValidationError{
		Location: w.location,
		Path:     path,
		Reason:   reason,
		Message:  msg,
		Value:    w.echoValue(value),
	})
}

// formatFinding routes a format violation to errors or warnings depending
// on strict-formats mode.
func (w *schemaWalk) formatFinding(path FieldPath, msg string, value any) {
	if w.v.cfg.strictFormats {
		w.report(path, ReasonFormatMismatch, msg, value)
		return
	}
	w.warn(path, ReasonFormatMismatch, msg, value)
}

// echoValue decides what lands in a finding's Value field: scalars only,
// and nothing at all for redacted locations.
func (w *schemaWalk) echoValue(value any) any {
	if w.redact || value == nil {
		return nil
	}
	switch value.(type) {
	case string, bool:
		return value
	case map[string]any, []any:
		return nil
	}
	if _, ok := numericValue(value); ok {
		return value
	}
	return nil
}

// walkValue validates value against node, appending every violation it
// finds. It never stops at the first one.
func (w *schemaWalk) walkValue(value any, node *contract.SchemaNode, path FieldPath) {
	if node == nil {
		return
	}

	key := guardKey{value: guardValue(value), node: node}
	if _, active := w.guard[key]; active {
		// Same value at the same node while that pair is still being
		// checked: the enclosing check covers it, recursing would never
		// terminate.
		return
	}
	w.guard[key] = struct{}{}
	defer delete(w.guard, key)

	if value == nil {
		w.walkNull(node, path)
		return
	}

	if !w.checkKind(value, node, path) {
		// Wrong shape entirely; constraint checks would only repeat the
		// mismatch in noisier form.
		return
	}

	w.checkEnum(value, node, path)

	switch data := value.(type) {
	case string:
		w.walkString(data, node, path)
	case bool:
		// booleans carry no constraints beyond kind and enum
	case []any:
		w.walkArray(data, node, path)
	case map[string]any:
		w.walkObject(data, node, path)
	default:
		if n, ok := numericValue(value); ok {
			w.walkNumber(n, node, path)
		}
	}

	w.walkComposition(value, node, path)
}

// walkNull handles a JSON null. Explicitly nullable nodes accept it
// outright; nodes with no shape of their own (any, union) defer to enum
// and composition; everything else is a kind mismatch.
func (w *schemaWalk) walkNull(node *contract.SchemaNode, path FieldPath) {
	if node.Nullable {
		return
	}
	if node.Kind == contract.KindAny || node.Kind == contract.KindUnion {
		w.checkEnum(nil, node, path)
		w.walkComposition(nil, node, path)
		return
	}
	w.report(path, ReasonTypeMismatch, fmt.Sprintf("value cannot be null, expected %s", node.Kind), nil)
}

// checkKind verifies the value's shape against the node's kind. It
// reports at most one finding and tells the caller whether to continue
// with constraint checks.
func (w *schemaWalk) checkKind(value any, node *contract.SchemaNode, path FieldPath) bool {
	switch node.Kind {
	case contract.KindAny, contract.KindUnion:
		return true
	}

	kind := valueKind(value)
	switch node.Kind {
	case contract.KindString:
		if kind == "string" {
			return true
		}
	case contract.KindBoolean:
		if kind == "boolean" {
			return true
		}
	case contract.KindNumber:
		if kind == "number" || kind == "integer" {
			return true
		}
	case contract.KindInteger:
		if kind == "integer" {
			return true
		}
		if kind == "number" {
			// JSON has one number type; a whole-valued float is an
			// integer on the wire.
			if n, ok := numericValue(value); ok && n == math.Trunc(n) {
				return true
			}
			msg := "value must be an integer"
			if !w.redact {
				msg = fmt.Sprintf("value must be an integer, got %v", value)
			}
			w.report(path, ReasonTypeMismatch, msg, value)
			return false
		}
	case contract.KindArray:
		if kind == "array" {
			return true
		}
	case contract.KindObject:
		if kind == "object" {
			return true
		}
	}

	w.report(path, ReasonTypeMismatch, fmt.Sprintf("expected type %s but got %s", node.Kind, kind), value)
	return false
}

func (w *schemaWalk) checkEnum(value any, node *contract.SchemaNode, path FieldPath) {
	if len(node.Enum) == 0 {
		return
	}
	for _, allowed := range node.Enum {
		if enumEqual(value, allowed) {
			return
		}
	}
	msg := "value is not one of the allowed values"
	if !w.redact {
		msg = fmt.Sprintf("value %v is not one of the allowed values", value)
	}
	w.report(path, ReasonEnumMismatch, msg, value)
}

func (w *schemaWalk) walkString(s string, node *contract.SchemaNode, path FieldPath) {
	// Lengths count characters, not bytes.
	length := utf8.RuneCountInString(s)

	if node.MinLength != nil && length < *node.MinLength {
		w.report(path, ReasonMinLength,
			fmt.Sprintf("string length %d is less than minimum %d", length, *node.MinLength), s)
	}
	if node.MaxLength != nil && length > *node.MaxLength {
		w.report(path, ReasonMaxLength,
			fmt.Sprintf("string length %d exceeds maximum %d", length, *node.MaxLength), s)
	}

	if node.Pattern != "" {
		matched, err := w.v.matchPattern(node.Pattern, s)
		switch {
		case err != nil:
			w.report(path, ReasonPatternMismatch,
				fmt.Sprintf("invalid pattern %q: %v", node.Pattern, err), nil)
		case !matched:
			w.report(path, ReasonPatternMismatch,
				fmt.Sprintf("string does not match pattern %q", node.Pattern), s)
		}
	}

	if node.Format != "" {
		w.checkStringFormat(s, node.Format, path)
	}
}

func (w *schemaWalk) checkStringFormat(s, format string, path FieldPath) {
	fn, known := w.v.formatValidator(format)
	if !known {
		// Unknown formats pass, per OpenAPI semantics.
		return
	}
	if err := fn(s); err != nil {
		msg := fmt.Sprintf("value is not a valid %s", format)
		if !w.redact {
			msg = fmt.Sprintf("%q is not a valid %s: %v", s, format, err)
		}
		w.formatFinding(path, msg, s)
	}
}

func (w *schemaWalk) walkNumber(n float64, node *contract.SchemaNode, path FieldPath) {
	if node.Minimum != nil {
		bound := *node.Minimum
		switch {
		case node.ExclusiveMinimum && n <= bound:
			w.report(path, ReasonExclusiveMinimum, w.boundMsg(n, "must be greater than", bound), n)
		case !node.ExclusiveMinimum && n < bound:
			w.report(path, ReasonMinimum, w.boundMsg(n, "is less than minimum", bound), n)
		}
	}

	if node.Maximum != nil {
		bound := *node.Maximum
		switch {
		case node.ExclusiveMaximum && n >= bound:
			w.report(path, ReasonExclusiveMaximum, w.boundMsg(n, "must be less than", bound), n)
		case !node.ExclusiveMaximum && n > bound:
			w.report(path, ReasonMaximum, w.boundMsg(n, "exceeds maximum", bound), n)
		}
	}

	if node.MultipleOf != nil && *node.MultipleOf != 0 {
		if q := n / *node.MultipleOf; q != math.Trunc(q) {
			w.report(path, ReasonMultipleOf, w.boundMsg(n, "is not a multiple of", *node.MultipleOf), n)
		}
	}

	if node.Format != "" {
		w.checkNumberFormat(n, node.Format, path)
	}
}

func (w *schemaWalk) boundMsg(n float64, rel string, bound float64) string {
	if w.redact {
		return fmt.Sprintf("value %s %v", rel, bound)
	}
	return fmt.Sprintf("value %v %s %v", n, rel, bound)
}

// checkNumberFormat applies the numeric range formats. These are bounds
// checks on the number itself, not string formats, so they bypass the
// format registry.
func (w *schemaWalk) checkNumberFormat(n float64, format string, path FieldPath) {
	switch format {
	case "int32":
		if n < math.MinInt32 || n > math.MaxInt32 {
			w.formatFinding(path, w.rangeMsg(n, format), n)
		}
	case "int64":
		// math.MaxInt64 rounds up to 2^63 as a float64, so >= is the
		// correct out-of-range test on the high side.
		if n < math.MinInt64 || n >= math.MaxInt64 {
			w.formatFinding(path, w.rangeMsg(n, format), n)
		}
	case "float":
		if math.Abs(n) > math.MaxFloat32 {
			w.formatFinding(path, w.rangeMsg(n, format), n)
		}
	}
}

func (w *schemaWalk) rangeMsg(n float64, format string) string {
	if w.redact {
		return fmt.Sprintf("value is outside the range of %s", format)
	}
	return fmt.Sprintf("value %v is outside the range of %s", n, format)
}

func (w *schemaWalk) walkArray(arr []any, node *contract.SchemaNode, path FieldPath) {
	if node.MinItems != nil && len(arr) < *node.MinItems {
		w.report(path, ReasonMinItems,
			fmt.Sprintf("array has %d items, minimum is %d", len(arr), *node.MinItems), nil)
	}
	if node.MaxItems != nil && len(arr) > *node.MaxItems {
		w.report(path, ReasonMaxItems,
			fmt.Sprintf("array has %d items, maximum is %d", len(arr), *node.MaxItems), nil)
	}
	if node.UniqueItems && hasDuplicates(arr) {
		w.report(path, ReasonUniqueItems, "array items must be unique", nil)
	}

	if node.Items != nil {
		for i, item := range arr {
			w.walkValue(item, node.Items, path.Index(i))
		}
	}
}

func (w *schemaWalk) walkObject(obj map[string]any, node *contract.SchemaNode, path FieldPath) {
	// Required names report in declared order.
	for _, name := range node.Required {
		if _, present := obj[name]; !present {
			w.report(path.Field(name), ReasonRequired,
				fmt.Sprintf("required property %q is missing", name), nil)
		}
	}

	if node.MinProperties != nil && len(obj) < *node.MinProperties {
		w.report(path, ReasonMinProperties,
			fmt.Sprintf("object has %d properties, minimum is %d", len(obj), *node.MinProperties), nil)
	}
	if node.MaxProperties != nil && len(obj) > *node.MaxProperties {
		w.report(path, ReasonMaxProperties,
			fmt.Sprintf("object has %d properties, maximum is %d", len(obj), *node.MaxProperties), nil)
	}

	// Present properties walk in sorted order so map iteration randomness
	// never leaks into finding order.
	names := make([]string, 0, len(obj))
	for name := range obj {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := obj[name]
		if propSchema, declared := node.Properties[name]; declared {
			w.walkValue(value, propSchema, path.Field(name))
			continue
		}
		switch node.Additional.Mode {
		case contract.AdditionalForbid:
			w.report(path.Field(name), ReasonAdditionalProperty,
				fmt.Sprintf("additional property %q is not allowed", name), nil)
		case contract.AdditionalSchema:
			w.walkValue(value, node.Additional.Schema, path.Field(name))
		}
	}
}

// walkComposition applies oneOf, anyOf, and allOf, in that order.
func (w *schemaWalk) walkComposition(value any, node *contract.SchemaNode, path FieldPath) {
	if len(node.OneOf) > 0 {
		w.walkUnion(value, node.OneOf, true, path)
	}
	if len(node.AnyOf) > 0 {
		w.walkUnion(value, node.AnyOf, false, path)
	}

	for i, branch := range node.AllOf {
		errs, warns := w.capture(value, branch, path)
		w.warnings = append(w.warnings, warns...)
		if len(errs) > 0 {
			w.report(path, ReasonAllOfMismatch, fmt.Sprintf("allOf schema %d failed validation", i), nil)
			w.errors = append(w.errors, errs...)
		}
	}
}

// walkUnion checks value against a set of alternative schemas. exactlyOne
// distinguishes oneOf from anyOf.
func (w *schemaWalk) walkUnion(value any, branches []*contract.SchemaNode, exactlyOne bool, path FieldPath) {
	branchErrs := make([][]ValidationError, len(branches))
	branchWarns := make([][]ValidationError, len(branches))
	matches := 0
	first := -1

	for i, branch := range branches {
		errs, warns := w.capture(value, branch, path)
		branchErrs[i], branchWarns[i] = errs, warns
		if len(errs) == 0 {
			matches++
			if first < 0 {
				first = i
			}
		}
	}

	switch {
	case matches == 1 || (matches > 1 && !exactlyOne):
		// Matched. Keep only the matching branch's advisory findings.
		w.warnings = append(w.warnings, branchWarns[first]...)
		return
	case matches > 1:
		w.report(path, ReasonUnionMismatch,
			fmt.Sprintf("value matches %d schemas, expected exactly one", matches), value)
		return
	}

	// No branch accepted the value.
	if w.v.cfg.unionErrors == UnionErrorsAll {
		counts := make([]string, len(branchErrs))
		for i, errs := range branchErrs {
			counts[i] = strconv.Itoa(len(errs))
		}
		w.report(path, ReasonUnionMismatch,
			fmt.Sprintf("value matches none of the %d allowed schemas (violations per schema: %s)",
				len(branches), strings.Join(counts, ", ")), value)
		for i := range branches {
			w.errors = append(w.errors, branchErrs[i]...)
			w.warnings = append(w.warnings, branchWarns[i]...)
		}
		return
	}

	// Closest match: surface only the branch that came nearest to
	// accepting the value. Fewest violations wins, first declared on ties.
	best := 0
	for i := 1; i < len(branchErrs); i++ {
		if len(branchErrs[i]) < len(branchErrs[best]) {
			best = i
		}
	}
	w.errors = append(w.errors, branchErrs[best]...)
	w.warnings = append(w.warnings, branchWarns[best]...)
}

// capture runs a sub-walk and hands back its findings instead of leaving
// them on the walk, letting union handling decide which branches' findings
// survive.
func (w *schemaWalk) capture(value any, node *contract.SchemaNode, path FieldPath) (errs, warns []ValidationError) {
	errMark, warnMark := len(w.errors), len(w.warnings)
	w.walkValue(value, node, path)
	if n := len(w.errors) - errMark; n > 0 {
		errs = make([]ValidationError, n)
		copy(errs, w.errors[errMark:])
		w.errors = w.errors[:errMark]
	}
	if n := len(w.warnings) - warnMark; n > 0 {
		warns = make([]ValidationError, n)
		copy(warns, w.warnings[warnMark:])
		w.warnings = w.warnings[:warnMark]
	}
	return errs, warns
}

// maxPatternCacheSize is the upper bound on cached compiled regex
// patterns. When exceeded, the cache is cleared to prevent unbounded
// memory growth from documents with many unique patterns.
const maxPatternCacheSize = 1000

// matchPattern compiles and matches a regex pattern through the
// validator's bounded cache.
func (v *Validator) matchPattern(pattern, s string) (bool, error) {
	if cached, ok := v.patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp).MatchString(s), nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}

	// NOTE: The count check and clear are not atomic; under high
	// concurrency multiple goroutines may clear simultaneously. The cache
	// is a performance optimization, so the worst case is recompilation.
	if v.patternCount.Add(1) > maxPatternCacheSize {
		v.patternCache.Range(func(key, _ any) bool {
			v.patternCache.Delete(key)
			return true
		})
		v.patternCount.Store(1)
	}
	v.patternCache.Store(pattern, re)
	return re.MatchString(s), nil
}

// valueKind returns the wire-level type name of a decoded value.
func valueKind(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32:
		return "number"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}

	// Custom body decoders may hand back richer types.
	switch reflect.ValueOf(value).Kind() {
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map:
		return "object"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	}
	return "unknown"
}

// numericValue converts any numeric type to float64.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
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

// enumEqual compares a decoded value against a declared enum entry.
// Decoded JSON numbers arrive as float64 while document enums keep their
// parsed integer types, so numbers compare by value, not representation.
func enumEqual(a, b any) bool {
	an, aok := numericValue(a)
	bn, bok := numericValue(b)
	if aok || bok {
		return aok && bok && an == bn
	}
	return reflect.DeepEqual(a, b)
}

// hasDuplicates checks an array for duplicate values using cheap
// type-tagged fingerprints.
func hasDuplicates(arr []any) bool {
	seen := make(map[string]bool, len(arr))
	for _, item := range arr {
		key := fmt.Sprintf("%T:%v", item, item)
		if seen[key] {
			return true
		}
		seen[key] = true
	}
	return false
}
