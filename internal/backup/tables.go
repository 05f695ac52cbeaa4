package backup

import "fmt"

// ColumnKind value type of a snapshot column
type ColumnKind uint8

const (
	KindInt ColumnKind = iota
	KindText
	KindBool
	// KindTime timestamptz, RFC3339 in JSON
	KindTime
	// KindDate calendar date, YYYY-MM-DD in JSON
	KindDate
)

func (k ColumnKind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindText:
		return "text"
	case KindBool:
		return "boolean"
	case KindTime:
		return "timestamp"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Column one column of a snapshot table
type Column struct {
	Name string
	Kind ColumnKind
	// Required rows without a value fail validation instead of inserting NULL
	Required bool
}

// Table a table covered by the snapshot
type Table struct {
	Name      string
	Columns   []Column
	DependsOn []string
}

// ColumnNames column names in declared order
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

func idColumn() Column { return Column{Name: "id", Kind: KindInt, Required: true} }

func timestampColumns() []Column {
	return []Column{
		{Name: "created_at", Kind: KindTime},
		{Name: "updated_at", Kind: KindTime},
	}
}

// registry declared tables; dependency order is derived, not taken from this list
var registry = []Table{
	{
		Name: "personnel",
		Columns: append([]Column{
			idColumn(),
			{Name: "personnel_code", Kind: KindText},
			{Name: "first_name", Kind: KindText},
			{Name: "last_name", Kind: KindText},
			{Name: "national_id", Kind: KindText},
			{Name: "department", Kind: KindText},
			{Name: "position", Kind: KindText},
			{Name: "phone", Kind: KindText},
			{Name: "hire_date", Kind: KindDate},
			{Name: "is_active", Kind: KindBool},
		}, timestampColumns()...),
	},
	{
		Name: "commuting_members",
		Columns: append([]Column{
			idColumn(),
			{Name: "personnel_code", Kind: KindText},
			{Name: "full_name", Kind: KindText},
			{Name: "department", Kind: KindText},
			{Name: "position", Kind: KindText},
			{Name: "is_active", Kind: KindBool},
		}, timestampColumns()...),
	},
	{
		Name: "dependents",
		Columns: append([]Column{
			idColumn(),
			{Name: "personnel_id", Kind: KindInt},
			{Name: "full_name", Kind: KindText},
			{Name: "relationship", Kind: KindText},
			{Name: "national_id", Kind: KindText},
			{Name: "birth_date", Kind: KindDate},
		}, timestampColumns()...),
		DependsOn: []string{"personnel"},
	},
	{
		Name: "commute_logs",
		Columns: append([]Column{
			idColumn(),
			{Name: "personnel_code", Kind: KindText},
			{Name: "guard_name", Kind: KindText},
			{Name: "entry_time", Kind: KindTime},
			{Name: "exit_time", Kind: KindTime},
			{Name: "log_type", Kind: KindText},
		}, timestampColumns()...),
	},
	{
		Name: "hourly_commute_logs",
		Columns: append([]Column{
			idColumn(),
			{Name: "personnel_code", Kind: KindText},
			{Name: "full_name", Kind: KindText},
			{Name: "guard_name", Kind: KindText},
			{Name: "exit_time", Kind: KindTime},
			{Name: "return_time", Kind: KindTime},
			{Name: "reason", Kind: KindText},
		}, timestampColumns()...),
	},
	{
		Name: "commute_edit_logs",
		Columns: []Column{
			idColumn(),
			{Name: "commute_log_id", Kind: KindInt},
			{Name: "personnel_code", Kind: KindText},
			{Name: "editor_name", Kind: KindText},
			{Name: "edit_timestamp", Kind: KindTime},
			{Name: "field_name", Kind: KindText},
			{Name: "old_value", Kind: KindText},
			{Name: "new_value", Kind: KindText},
		},
		DependsOn: []string{"commute_logs"},
	},
}

var ordered = mustOrder(registry)

// Tables snapshot tables in dependency order
func Tables() []Table {
	out := make([]Table, len(ordered))
	copy(out, ordered)
	return out
}

// TableNames snapshot table names in dependency order
func TableNames() []string {
	names := make([]string, len(ordered))
	for i, t := range ordered {
		names[i] = t.Name
	}
	return names
}

// Order sorts tables so every table follows the tables it depends on.
// Ties keep declaration order. Unknown dependencies and cycles are errors.
func Order(tables []Table) ([]Table, error) {
	index := make(map[string]int, len(tables))
	for i, t := range tables {
		if _, dup := index[t.Name]; dup {
			return nil, fmt.Errorf("table %s declared twice", t.Name)
		}
		index[t.Name] = i
	}

	indegree := make([]int, len(tables))
	dependents := make([][]int, len(tables))
	for i, t := range tables {
		for _, dep := range t.DependsOn {
			j, ok := index[dep]
			if !ok {
				return nil, fmt.Errorf("table %s depends on unknown table %s", t.Name, dep)
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	out := make([]Table, 0, len(tables))
	done := make([]bool, len(tables))
	for len(out) < len(tables) {
		next := -1
		for i := range tables {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, fmt.Errorf("dependency cycle among snapshot tables")
		}
		done[next] = true
		out = append(out, tables[next])
		for _, d := range dependents[next] {
			indegree[d]--
		}
	}
	return out, nil
}

func mustOrder(tables []Table) []Table {
	out, err := Order(tables)
	if err != nil {
		panic("backup: " + err.Error())
	}
	return out
}
