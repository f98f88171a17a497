package model

// SQLQueryRequest is a SQL query against one or more tables.
//
// Tables are routing hints: in direct mode the first table's endpoint
// is the query target, the rest only inform route resolution.
type SQLQueryRequest struct {
	Tables []string
	SQL    string
}

// Row is one decoded result row.
type Row map[string]interface{}

// SQLQueryResponse is the decoded result of a SQL query.
type SQLQueryResponse struct {
	AffectedRows uint32
	Rows         []Row
}
