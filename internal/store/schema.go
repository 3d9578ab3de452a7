package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table definitions in the shape ent's migrate package expects. The tables
// are read and written with ent's SQL builders.
var (
	listsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "name", Type: field.TypeString, Size: 100},
		{Name: "description", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	listsTable = &schema.Table{
		Name:       "lists",
		Columns:    listsColumns,
		PrimaryKey: []*schema.Column{listsColumns[0]},
	}

	entriesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 20},
		{Name: "headword", Type: field.TypeString},
		{Name: "reading", Type: field.TypeString},
		{Name: "gloss_text", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "is_common", Type: field.TypeBool, Default: false},
		{Name: "word", Type: field.TypeJSON},
	}
	entriesTable = &schema.Table{
		Name:       "entries",
		Columns:    entriesColumns,
		PrimaryKey: []*schema.Column{entriesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "entry_headword", Columns: []*schema.Column{entriesColumns[1]}},
			{Name: "entry_reading", Columns: []*schema.Column{entriesColumns[2]}},
		},
	}

	flashcardsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "note", Type: field.TypeString, Size: 2000, Default: ""},
		{Name: "is_memorized", Type: field.TypeBool, Default: false},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "list_id", Type: field.TypeInt64},
		{Name: "entry_id", Type: field.TypeString, Size: 20},
	}
	flashcardsTable = &schema.Table{
		Name:       "flashcards",
		Columns:    flashcardsColumns,
		PrimaryKey: []*schema.Column{flashcardsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "flashcards_lists_cards",
				Columns:    []*schema.Column{flashcardsColumns[4]},
				RefColumns: []*schema.Column{listsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "flashcards_entries_cards",
				Columns:    []*schema.Column{flashcardsColumns[5]},
				RefColumns: []*schema.Column{entriesColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "flashcard_list_id_entry_id",
				Unique:  true,
				Columns: []*schema.Column{flashcardsColumns[4], flashcardsColumns[5]},
			},
		},
	}

	studyLogsColumns = []*schema.Column{
		{Name: "date", Type: field.TypeString, Size: 10},
		{Name: "count", Type: field.TypeInt, Default: 0},
	}
	studyLogsTable = &schema.Table{
		Name:       "study_logs",
		Columns:    studyLogsColumns,
		PrimaryKey: []*schema.Column{studyLogsColumns[0]},
	}

	llmRequestsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	llmRequestsTable = &schema.Table{
		Name:       "llm_requests",
		Columns:    llmRequestsColumns,
		PrimaryKey: []*schema.Column{llmRequestsColumns[0]},
	}

	tables = []*schema.Table{
		listsTable,
		entriesTable,
		flashcardsTable,
		studyLogsTable,
		llmRequestsTable,
	}
)

func init() {
	flashcardsTable.ForeignKeys[0].RefTable = listsTable
	flashcardsTable.ForeignKeys[1].RefTable = entriesTable
}
