package core

// IndexDefinition describes one user-defined index on a table.
// Columns and Lengths correspond positionally; a nil length means the whole
// column is indexed.
type IndexDefinition struct {
	Table   string   `json:"table" yaml:"table"`
	Name    string   `json:"name" yaml:"name"`
	Unique  bool     `json:"unique" yaml:"unique"`
	Columns []string `json:"columns" yaml:"columns"`
	Lengths []*int   `json:"lengths" yaml:"lengths"`
}

// NewIndexDefinition builds an IndexDefinition that does not share its
// slices with the caller. It panics if columns and lengths differ in length.
func NewIndexDefinition(table, name string, unique bool, columns []string, lengths []*int) IndexDefinition {
	if len(columns) != len(lengths) {
		panic("core: index columns and lengths differ in length")
	}
	def := IndexDefinition{
		Table:   table,
		Name:    name,
		Unique:  unique,
		Columns: make([]string, len(columns)),
		Lengths: make([]*int, len(lengths)),
	}
	copy(def.Columns, columns)
	for i, l := range lengths {
		if l != nil {
			n := *l
			def.Lengths[i] = &n
		}
	}
	return def
}

// Length returns the prefix length of the i-th column and whether one is set.
func (d IndexDefinition) Length(i int) (int, bool) {
	if i < 0 || i >= len(d.Lengths) || d.Lengths[i] == nil {
		return 0, false
	}
	return *d.Lengths[i], true
}
