package types

import (
	"fmt"
	"time"
)

// PrintableResource is anything the printers know how to render.
type PrintableResource interface {
	GetItems() any
	GetTable() (Table, error)
}

// PrintableReport renders a run report.
type PrintableReport struct {
	Report *RunReport
}

func NewPrintableReport(r *RunReport) PrintableReport {
	return PrintableReport{Report: r}
}

func (p PrintableReport) GetItems() any {
	return p.Report
}

func (p PrintableReport) GetTable() (Table, error) {
	var rows []TableRow
	for _, r := range p.Report.Results {
		exit := "-"
		if r.Classification != ClassificationSkipped {
			exit = fmt.Sprintf("%d", r.ExitCode)
		}
		rows = append(rows, TableRow{Cells: []interface{}{
			r.Index,
			r.Name,
			string(r.Type),
			string(r.Classification),
			exit,
			r.Duration.Round(time.Millisecond).String(),
			r.Reason,
			r.Command,
		}})
	}
	return Table{Rows: rows, Columns: p.columns()}, nil
}

func (PrintableReport) columns() []TableColumnDefinition {
	return []TableColumnDefinition{
		{Name: "STEP", Type: "integer", Description: "Position of the step in the pipeline"},
		{Name: "NAME", Type: "string", Description: "The name of the step"},
		{Name: "TYPE", Type: "string", Description: "The type of the step"},
		{Name: "STATUS", Type: "string", Description: "success, failure or skipped"},
		{Name: "EXIT", Type: "string", Description: "Exit code of the command"},
		{Name: "DURATION", Type: "string", Description: "Wall clock time"},
		{Name: "REASON", Type: "string", Description: "Failure or skip reason"},
		{Name: "COMMAND", Type: "string", Description: "The resolved command"},
	}
}

// PrintableViolations renders validation violations.
type PrintableViolations struct {
	Items []Violation
}

func (p PrintableViolations) GetItems() any {
	return p.Items
}

func (p PrintableViolations) GetTable() (Table, error) {
	var rows []TableRow
	for _, v := range p.Items {
		rows = append(rows, TableRow{Cells: []interface{}{v.Field, v.Reason}})
	}
	return Table{
		Rows: rows,
		Columns: []TableColumnDefinition{
			{Name: "FIELD", Type: "string", Description: "Path of the offending field"},
			{Name: "REASON", Type: "string", Description: "Why the field is invalid"},
		},
	}, nil
}

// PlannedStep is a step with its resolved command, as shown by check.
type PlannedStep struct {
	Index   int      `json:"index" yaml:"index"`
	Name    string   `json:"name" yaml:"name"`
	Type    StepType `json:"type" yaml:"type"`
	Phase   Phase    `json:"phase" yaml:"phase"`
	Command string   `json:"command,omitempty" yaml:"command,omitempty"`
	Error   string   `json:"error,omitempty" yaml:"error,omitempty"`
}

type PrintablePlan struct {
	Items []PlannedStep
}

func (p PrintablePlan) GetItems() any {
	return p.Items
}

func (p PrintablePlan) GetTable() (Table, error) {
	var rows []TableRow
	for _, s := range p.Items {
		cmd := s.Command
		if s.Error != "" {
			cmd = "ERROR: " + s.Error
		}
		rows = append(rows, TableRow{Cells: []interface{}{s.Index, s.Name, string(s.Type), string(s.Phase), cmd}})
	}
	return Table{
		Rows: rows,
		Columns: []TableColumnDefinition{
			{Name: "STEP", Type: "integer", Description: "Position of the step in the pipeline"},
			{Name: "NAME", Type: "string", Description: "The name of the step"},
			{Name: "TYPE", Type: "string", Description: "The type of the step"},
			{Name: "PHASE", Type: "string", Description: "The phase the step belongs to"},
			{Name: "COMMAND", Type: "string", Description: "The resolved command"},
		},
	}, nil
}
