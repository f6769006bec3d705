package expr

import (
	"fmt"
	"strconv"
	"strings"
)

type node interface {
	eval(scope Scope) (bool, error)
}

type orNode struct{ left, right node }

func (n orNode) eval(scope Scope) (bool, error) {
	ok, err := n.left.eval(scope)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(scope)
}

type andNode struct{ left, right node }

func (n andNode) eval(scope Scope) (bool, error) {
	ok, err := n.left.eval(scope)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(scope)
}

type notNode struct{ inner node }

func (n notNode) eval(scope Scope) (bool, error) {
	ok, err := n.inner.eval(scope)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

type truthyNode struct{ ident string }

func (n truthyNode) eval(scope Scope) (bool, error) {
	value, ok := Lookup(scope, n.ident)
	if !ok {
		return false, nil
	}
	return Truthy(value), nil
}

type compareNode struct {
	ident string
	op    tokenKind
	lit   token
}

func (n compareNode) eval(scope Scope) (bool, error) {
	value, _ := Lookup(scope, n.ident)

	switch n.lit.kind {
	case tokNull:
		isNull := value == nil
		if n.op == tokEq {
			return isNull, nil
		}
		return !isNull, nil
	case tokBool:
		want := n.lit.raw == "true"
		got, _ := coerceBool(value)
		if n.op == tokEq {
			return got == want, nil
		}
		return got != want, nil
	case tokNumber:
		want, err := strconv.ParseFloat(n.lit.raw, 64)
		if err != nil {
			return false, fmt.Errorf("expr: invalid number literal %q", n.lit.raw)
		}
		got, ok := coerceNumber(value)
		if !ok {
			// missing or non-numeric values only satisfy !=
			return n.op == tokNeq, nil
		}
		return compareOrdered(got, want, n.op), nil
	case tokString:
		return compareOrdered(coerceString(value), n.lit.raw, n.op), nil
	default:
		return false, fmt.Errorf("expr: unsupported literal %q", n.lit.raw)
	}
}

func compareOrdered[T float64 | string](got, want T, op tokenKind) bool {
	switch op {
	case tokEq:
		return got == want
	case tokNeq:
		return got != want
	case tokLt:
		return got < want
	case tokLte:
		return got <= want
	case tokGt:
		return got > want
	case tokGte:
		return got >= want
	default:
		return false
	}
}

// Lookup resolves an identifier against the scope. Exact keys win over dotted
// traversal so flattened keys such as "address.city" resolve directly.
func Lookup(scope Scope, key string) (any, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false
	}
	if len(key) > len("extras.") && strings.EqualFold(key[:len("extras.")], "extras.") {
		return lookupPath(scope.Extras, key[len("extras."):])
	}
	return lookupPath(scope.Values, key)
}

func lookupPath(values map[string]any, path string) (any, bool) {
	if len(values) == 0 || path == "" {
		return nil, false
	}
	if v, ok := values[path]; ok {
		return v, true
	}

	var current any = values
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			return nil, false
		}
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]string:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		default:
			return nil, false
		}
	}
	return current, true
}

// Truthy reports whether value counts as set: non-empty strings, non-zero
// numbers, true, and non-empty collections.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case float32:
		return v != 0
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

func coerceBool(value any) (bool, bool) {
	switch v := value.(type) {
	case nil:
		return false, false
	case bool:
		return v, true
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed, true
		}
		return strings.TrimSpace(v) != "", true
	default:
		return Truthy(value), true
	}
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(value)
	}
}
