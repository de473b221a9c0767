package schema

// Description is an auditable, serializable view of a schema
type Description struct {
	Name    string              `yaml:"name" json:"name"`
	Filter  *FilterDescription  `yaml:"filter,omitempty" json:"filter,omitempty"`
	Columns []ColumnDescription `yaml:"columns" json:"columns"`
}

// FilterDescription describes the filter column of a schema
type FilterDescription struct {
	Column string `yaml:"column" json:"column"`
	Target string `yaml:"target,omitempty" json:"target,omitempty"`
	Rule   string `yaml:"rule" json:"rule"`
}

// ColumnDescription describes one output column
type ColumnDescription struct {
	Name    string   `yaml:"name" json:"name"`
	Kind    string   `yaml:"kind" json:"kind"`
	Sources []string `yaml:"sources,omitempty" json:"sources,omitempty"`
	Rule    string   `yaml:"rule,omitempty" json:"rule,omitempty"`
	Default *string  `yaml:"default,omitempty" json:"default,omitempty"`
	Value   *string  `yaml:"value,omitempty" json:"value,omitempty"`
	Formula string   `yaml:"formula,omitempty" json:"formula,omitempty"`
}

// Describe returns the description of the schema
func (s *Schema) Describe() Description {
	d := Description{Name: s.Name}
	if s.Filter != nil {
		d.Filter = &FilterDescription{Column: s.Filter.Column, Target: s.Filter.Target, Rule: string(s.Filter.Rule)}
	}

	for _, c := range s.Columns {
		cd := ColumnDescription{Name: c.Name, Kind: string(c.Kind)}
		switch c.Kind {
		case KindCopy:
			cd.Sources = c.Sources
			cd.Rule = string(c.Rule)
			if c.HasDefault {
				v := c.Default.String()
				cd.Default = &v
			}
		case KindConst:
			v := c.Value.String()
			cd.Value = &v
		case KindComputed:
			cd.Formula = c.Formula
		}
		d.Columns = append(d.Columns, cd)
	}
	return d
}
