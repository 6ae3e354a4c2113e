package domain

// Record is a single tabular row: column name to scalar value.
type Record map[string]any

// Batch is an ordered, fixed-length collection of records sharing a schema.
// Validation never mutates a batch; it only derives masks and subsets.
type Batch []Record

// Len returns the number of records in the batch.
func (b Batch) Len() int { return len(b) }

// Subset returns the records at positions where keep[i] is true.
// The returned batch shares record maps with the source.
func (b Batch) Subset(keep Mask) Batch {
	if len(keep) != len(b) {
		return nil
	}
	var out Batch
	for i, r := range b {
		if keep[i] {
			out = append(out, r)
		}
	}
	return out
}

// Mask is a per-record boolean "passed" vector.
type Mask []bool

// NewMask returns a mask of length n with every position set to v.
func NewMask(n int, v bool) Mask {
	m := make(Mask, n)
	for i := range m {
		m[i] = v
	}
	return m
}

// And intersects two masks in place and returns the receiver.
func (m Mask) And(other Mask) Mask {
	for i := range m {
		m[i] = m[i] && other[i]
	}
	return m
}

// Clone returns a copy of the mask.
func (m Mask) Clone() Mask {
	out := make(Mask, len(m))
	copy(out, m)
	return out
}

// CountTrue returns the number of set positions.
func (m Mask) CountTrue() int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

// CountFalse returns the number of unset positions.
func (m Mask) CountFalse() int { return len(m) - m.CountTrue() }

// Invert returns a new mask with every position flipped.
func (m Mask) Invert() Mask {
	out := make(Mask, len(m))
	for i, v := range m {
		out[i] = !v
	}
	return out
}

// IsNull reports whether the column is absent, nil, or an empty string.
func (r Record) IsNull(column string) bool {
	v, ok := r[column]
	if !ok || v == nil {
		return true
	}
	s, isStr := v.(string)
	return isStr && s == ""
}

// Float returns the column value coerced to float64. The second return
// is false when the column is null or not numeric.
func (r Record) Float(column string) (float64, bool) {
	v, ok := r[column]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// String returns the column value coerced to a string. The second return
// is false when the column is null or not a string.
func (r Record) String(column string) (string, bool) {
	v, ok := r[column]
	if !ok || v == nil {
		return "", false
	}
	s, isStr := v.(string)
	return s, isStr
}
