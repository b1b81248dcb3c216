package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/brianstittsr/windsurf-LeadershipConnections-sub002/internal/datahub/entity"
)

// Result collects the outcome of validating one record payload. Errors holds
// one message per violation, in schema field order.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)
)

// dateLayouts are tried in order when validating date fields.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	time.RFC1123,
}

// Validate checks data against the dataset schema and returns every violation
// found. It never mutates data: extra keys are ignored, coercions happen on
// copies, and the caller persists the payload exactly as submitted.
//
// A required field fails only when it is missing, nil, or the empty string;
// zero and false are real values. Non-required fields with those empty values
// skip all further checks. Enum membership is enforced independently of the
// declared type.
func Validate(data map[string]interface{}, sch *entity.DatasetSchema) Result {
	var errors []string

	for _, field := range sch.Fields {
		value, present := data[field.Name]

		empty := !present || value == nil || value == ""
		if field.Required && empty {
			errors = append(errors, fmt.Sprintf("Field '%s' is required", field.Label))
			continue
		}
		if empty {
			continue
		}

		switch FieldType(field.Type) {
		case FieldEmail:
			if !emailRe.MatchString(stringify(value)) {
				errors = append(errors, fmt.Sprintf("Field '%s' must be a valid email address", field.Label))
			}

		case FieldPhone:
			if !phoneRe.MatchString(stringify(value)) {
				errors = append(errors, fmt.Sprintf("Field '%s' must be a valid phone number", field.Label))
			}

		case FieldURL:
			if !isURL(value) {
				errors = append(errors, fmt.Sprintf("Field '%s' must be a valid URL", field.Label))
			}

		case FieldNumber:
			num, ok := toNumber(value)
			if !ok {
				errors = append(errors, fmt.Sprintf("Field '%s' must be a number", field.Label))
				break
			}
			if v := field.Validation; v != nil {
				if v.Min != nil && num < *v.Min {
					errors = append(errors, fmt.Sprintf("Field '%s' must be at least %s", field.Label, formatNumber(*v.Min)))
				}
				if v.Max != nil && num > *v.Max {
					errors = append(errors, fmt.Sprintf("Field '%s' must be at most %s", field.Label, formatNumber(*v.Max)))
				}
			}

		case FieldDate:
			if !isDate(value) {
				errors = append(errors, fmt.Sprintf("Field '%s' must be a valid date", field.Label))
			}

		case FieldBoolean:
			if !isBoolean(value) {
				errors = append(errors, fmt.Sprintf("Field '%s' must be true or false", field.Label))
			}

		case FieldArray:
			if _, ok := value.([]interface{}); !ok {
				if reflect.ValueOf(value).Kind() != reflect.Slice {
					errors = append(errors, fmt.Sprintf("Field '%s' must be an array", field.Label))
				}
			}

		case FieldJSON:
			switch v := value.(type) {
			case string:
				if !json.Valid([]byte(v)) {
					errors = append(errors, fmt.Sprintf("Field '%s' must be valid JSON", field.Label))
				}
			case map[string]interface{}, []interface{}:
			default:
				errors = append(errors, fmt.Sprintf("Field '%s' must be a JSON object", field.Label))
			}
		}

		if s, ok := value.(string); ok && field.Validation != nil {
			v := field.Validation
			if v.MinLength != nil && *v.MinLength > 0 && len(s) < *v.MinLength {
				errors = append(errors, fmt.Sprintf("Field '%s' must be at least %d characters", field.Label, *v.MinLength))
			}
			if v.MaxLength != nil && *v.MaxLength > 0 && len(s) > *v.MaxLength {
				errors = append(errors, fmt.Sprintf("Field '%s' must be at most %d characters", field.Label, *v.MaxLength))
			}
			if v.Pattern != "" {
				if re, err := regexp.Compile(v.Pattern); err == nil && !re.MatchString(s) {
					errors = append(errors, fmt.Sprintf("Field '%s' does not match the required pattern", field.Label))
				}
			}
		}

		if field.Validation != nil && len(field.Validation.Enum) > 0 && !enumContains(field.Validation.Enum, value) {
			errors = append(errors, fmt.Sprintf("Field '%s' must be one of: %s", field.Label, joinEnum(field.Validation.Enum)))
		}
	}

	return Result{Valid: len(errors) == 0, Errors: errors}
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return formatNumber(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// formatNumber renders without a trailing ".0" so messages read "at least 18"
// rather than "at least 18.000000".
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func toNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, isFinite(v)
	case float32:
		return float64(v), isFinite(float64(v))
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil && isFinite(f)
	case string:
		// ParseFloat accepts "NaN" and "Inf" spellings; a number field only
		// takes finite values.
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil && isFinite(f)
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isURL(value interface{}) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}

func isDate(value interface{}) bool {
	switch v := value.(type) {
	case time.Time:
		return true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return false
		}
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, s); err == nil {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func isBoolean(value interface{}) bool {
	switch value {
	case true, false, "true", "false":
		return true
	}
	return false
}

func enumContains(enum []interface{}, value interface{}) bool {
	for _, e := range enum {
		if valueEquals(e, value) {
			return true
		}
	}
	return false
}

// valueEquals compares enum entries to submitted values. Numbers compare
// numerically so an enum of [1, 2, 3] matches a decoded float64(2).
func valueEquals(a, b interface{}) bool {
	an, aok := numericValue(a)
	bn, bok := numericValue(b)
	if aok && bok {
		return an == bn
	}
	if aok != bok {
		return false
	}
	return reflect.DeepEqual(a, b)
}

func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func joinEnum(enum []interface{}) string {
	parts := make([]string, len(enum))
	for i, e := range enum {
		parts[i] = stringify(e)
	}
	return strings.Join(parts, ", ")
}

// CheckSchema validates a schema definition itself, used when datasets are
// created or updated. It returns every structural problem found.
func CheckSchema(sch *entity.DatasetSchema) []string {
	var errors []string

	if sch == nil || len(sch.Fields) == 0 {
		return []string{"schema must define at least one field"}
	}

	seen := make(map[string]bool, len(sch.Fields))
	for i, field := range sch.Fields {
		if field.Name == "" {
			errors = append(errors, fmt.Sprintf("field %d must have a name", i))
			continue
		}
		if seen[field.Name] {
			errors = append(errors, fmt.Sprintf("duplicate field name '%s'", field.Name))
		}
		seen[field.Name] = true

		if field.Label == "" {
			errors = append(errors, fmt.Sprintf("field '%s' must have a label", field.Name))
		}
		ft := FieldType(field.Type)
		if !ft.Known() {
			errors = append(errors, fmt.Sprintf("field '%s' has unknown type '%s'", field.Name, field.Type))
			continue
		}
		if ft.NeedsOptions() && len(field.Options) == 0 {
			errors = append(errors, fmt.Sprintf("field '%s' of type %s must define options", field.Name, field.Type))
		}
		if v := field.Validation; v != nil {
			if v.Pattern != "" {
				if _, err := regexp.Compile(v.Pattern); err != nil {
					errors = append(errors, fmt.Sprintf("field '%s' has an invalid pattern: %v", field.Name, err))
				}
			}
			if v.Min != nil && v.Max != nil && *v.Min > *v.Max {
				errors = append(errors, fmt.Sprintf("field '%s' has min greater than max", field.Name))
			}
			if v.MinLength != nil && v.MaxLength != nil && *v.MinLength > *v.MaxLength {
				errors = append(errors, fmt.Sprintf("field '%s' has minLength greater than maxLength", field.Name))
			}
		}
	}

	if sch.PrimaryKey != "" && !seen[sch.PrimaryKey] {
		errors = append(errors, fmt.Sprintf("primary key '%s' does not match any field", sch.PrimaryKey))
	}

	return errors
}
