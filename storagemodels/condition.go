/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"fmt"
	"reflect"

	"github.com/bmatcuk/doublestar/v4"
)

// Operator selects how a Condition compares a field.
type Operator string

const (
	// OpEq matches fields equal to the value.
	OpEq Operator = "="
	// OpMatch matches string fields against a glob pattern ("draft/**", "*-2025").
	OpMatch Operator = "match"
	// OpExists matches documents that carry the field at all.
	OpExists Operator = "exists"
)

// Condition filters documents on one field.
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// Eq builds an equality condition.
func Eq(field string, value any) Condition {
	return Condition{Field: field, Op: OpEq, Value: value}
}

// Match builds a glob condition.
func Match(field, pattern string) Condition {
	return Condition{Field: field, Op: OpMatch, Value: pattern}
}

// Exists builds a presence condition.
func Exists(field string) Condition {
	return Condition{Field: field, Op: OpExists}
}

// Validate rejects unknown operators and malformed glob patterns.
func (c Condition) Validate() error {
	if c.Field == "" {
		return fmt.Errorf("condition has no field")
	}
	switch c.Op {
	case OpEq, OpExists:
		return nil
	case OpMatch:
		pattern, ok := c.Value.(string)
		if !ok {
			return fmt.Errorf("match condition on %q needs a string pattern", c.Field)
		}
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid match pattern %q", pattern)
		}
		return nil
	default:
		return fmt.Errorf("unsupported operator %q", c.Op)
	}
}

// Matches reports whether a document satisfies every condition. The id is
// available to conditions on the "id" field.
func Matches(id string, fields map[string]any, conditions []Condition) bool {
	for _, c := range conditions {
		var (
			v  any
			ok bool
		)
		if c.Field == "id" {
			v, ok = id, true
		} else {
			v, ok = fields[c.Field]
		}

		switch c.Op {
		case OpExists:
			if !ok {
				return false
			}
		case OpMatch:
			s, isStr := v.(string)
			pattern, _ := c.Value.(string)
			if !ok || !isStr {
				return false
			}
			matched, err := doublestar.Match(pattern, s)
			if err != nil || !matched {
				return false
			}
		default:
			if !ok || !equalValues(v, c.Value) {
				return false
			}
		}
	}
	return true
}

// equalValues compares loosely enough that numbers read back from JSON or
// DynamoDB (float64) still equal the ints callers filter with.
func equalValues(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
