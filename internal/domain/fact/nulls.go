package fact

// NullDefaults holds explicit per-metric replacements for missing values, keyed by
// warehouse column name. A metric without an entry stays null.
type NullDefaults map[string]float64

// Apply returns v, or the configured default for column when v is null.
func (d NullDefaults) Apply(column string, v *float64) *float64 {
	if v != nil {
		return v
	}
	if fallback, ok := d[column]; ok {
		return Float(fallback)
	}
	return nil
}
