package types

import "time"

// HistoryEntry is one past run as kept in the run history.
type HistoryEntry struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	Pipeline  string    `json:"pipeline" yaml:"pipeline"`
	Command   string    `json:"command" yaml:"command"`
	State     string    `json:"state" yaml:"state"`
	Failures  int       `json:"failures" yaml:"failures"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

type PrintableHistory struct {
	Items []HistoryEntry
}

func (p PrintableHistory) GetItems() any {
	return p.Items
}

func (p PrintableHistory) GetTable() (Table, error) {
	var rows []TableRow
	for _, e := range p.Items {
		rows = append(rows, TableRow{Cells: []interface{}{
			e.RunID,
			e.Pipeline,
			e.Command,
			e.State,
			e.Failures,
			e.StartedAt.Local().Format(time.DateTime),
		}})
	}
	return Table{
		Rows: rows,
		Columns: []TableColumnDefinition{
			{Name: "RUN", Type: "string", Description: "Run identifier, also the log directory name"},
			{Name: "PIPELINE", Type: "string", Description: "Name of the pipeline"},
			{Name: "COMMAND", Type: "string", Description: "build, run or test"},
			{Name: "STATE", Type: "string", Description: "Outcome of the run"},
			{Name: "FAILURES", Type: "integer", Description: "Number of failed steps"},
			{Name: "STARTED", Type: "string", Description: "When the run started"},
		},
	}, nil
}
