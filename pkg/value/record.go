package value

// Record is an ordered mapping of unique column names to values.
// Insertion order is preserved; setting an existing name replaces its value
// in place.
type Record struct {
	cols  []string
	vals  []Value
	index map[string]int
}

// NewRecord returns an empty record with room for n columns.
func NewRecord(n int) *Record {
	return &Record{
		cols:  make([]string, 0, n),
		vals:  make([]Value, 0, n),
		index: make(map[string]int, n),
	}
}

// Zip builds a record from parallel column and value slices. The slices
// must have the same length; callers guarantee this by construction.
func Zip(cols []string, vals []Value) *Record {
	if len(cols) != len(vals) {
		panic("value: column/value arity mismatch")
	}
	r := NewRecord(len(cols))
	for i, c := range cols {
		r.Set(c, vals[i])
	}
	return r
}

func (*Record) Kind() Kind { return KindRecord }
func (*Record) sealed()    {}

// Set stores v under name.
func (r *Record) Set(name string, v Value) *Record {
	if v == nil {
		v = Null{}
	}
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[name]; ok {
		r.vals[i] = v
		return r
	}
	r.index[name] = len(r.cols)
	r.cols = append(r.cols, name)
	r.vals = append(r.vals, v)
	return r
}

// Get returns the value stored under name.
func (r *Record) Get(name string) (Value, bool) {
	if r == nil {
		return nil, false
	}
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.vals[i], true
}

// Has reports whether the record contains name.
func (r *Record) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Len returns the number of columns.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.cols)
}

// Columns returns the column names in order. The slice must not be modified.
func (r *Record) Columns() []string {
	if r == nil {
		return nil
	}
	return r.cols
}

// Values returns the values in column order. The slice must not be modified.
func (r *Record) Values() []Value {
	if r == nil {
		return nil
	}
	return r.vals
}

// At returns the name and value of the i-th column.
func (r *Record) At(i int) (string, Value) {
	return r.cols[i], r.vals[i]
}
