package model

import (
	"fmt"
	"sort"
)

// WriteRequest collects points grouped by table.
//
// The grouping is what the routed client partitions by endpoint, so a
// request may end up split across several server instances.
type WriteRequest struct {
	pointGroups map[string][]Point
}

// NewWriteRequest creates an empty write request.
func NewWriteRequest() *WriteRequest {
	return &WriteRequest{pointGroups: make(map[string][]Point)}
}

// Add validates points and appends them to their tables' groups.
func (r *WriteRequest) Add(points ...Point) error {
	for _, p := range points {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("invalid point for table %q: %w", p.Table, err)
		}
		r.pointGroups[p.Table] = append(r.pointGroups[p.Table], p)
	}
	return nil
}

// Tables returns the distinct table names in the request, sorted.
func (r *WriteRequest) Tables() []string {
	tables := make([]string, 0, len(r.pointGroups))
	for t := range r.pointGroups {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	return tables
}

// PointsFor returns the points destined for one table.
func (r *WriteRequest) PointsFor(table string) []Point {
	return r.pointGroups[table]
}

// IsEmpty reports whether the request holds no points.
func (r *WriteRequest) IsEmpty() bool {
	return len(r.pointGroups) == 0
}

// PointCount returns the total number of points across all tables.
func (r *WriteRequest) PointCount() int {
	n := 0
	for _, pts := range r.pointGroups {
		n += len(pts)
	}
	return n
}

// WriteOk summarizes the rows written by one or more partitions.
type WriteOk struct {
	Tables  []string
	Success uint32
	Failed  uint32
}

// Merge folds another summary into this one, concatenating table names
// and summing counts.
func (w *WriteOk) Merge(other WriteOk) {
	w.Tables = append(w.Tables, other.Tables...)
	w.Success += other.Success
	w.Failed += other.Failed
}
