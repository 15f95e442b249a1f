package schema

// Args is a validated argument record. It only holds fields declared by the
// schema that produced it, with defaults already applied.
type Args map[string]any

// Lookup reports whether the field is present.
func (a Args) Lookup(name string) (any, bool) {
	v, ok := a[name]
	return v, ok
}

// String returns the string value of name, or "" when absent.
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Float returns the numeric value of name, or 0 when absent.
func (a Args) Float(name string) float64 {
	switch n := a[name].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

// Int returns the integer value of name, or 0 when absent.
func (a Args) Int(name string) int {
	switch n := a[name].(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

// Bool returns the boolean value of name, or false when absent.
func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}
