package api

import (
	"fmt"
	"strconv"
)

// statsResponse is the envelope every stats.nba.com endpoint returns: named
// tables of positional rows described by a header list.
type statsResponse struct {
	ResultSets []resultSet `json:"resultSets"`
}

type resultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

// table returns the named result set, or the first one when name is empty.
func (r *statsResponse) table(name string) (*resultSet, error) {
	if name == "" {
		if len(r.ResultSets) == 0 {
			return nil, fmt.Errorf("response has no result sets")
		}
		return &r.ResultSets[0], nil
	}
	for i := range r.ResultSets {
		if r.ResultSets[i].Name == name {
			return &r.ResultSets[i], nil
		}
	}
	return nil, fmt.Errorf("result set %q not found", name)
}

// column finds the first of the given header names that is present.
func (s *resultSet) column(names ...string) (int, error) {
	for _, name := range names {
		for i, h := range s.Headers {
			if h == name {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("result set %q has no column %v", s.Name, names)
}

func (s *resultSet) columns(names ...string) (map[string]int, error) {
	idx := make(map[string]int, len(names))
	for _, name := range names {
		i, err := s.column(name)
		if err != nil {
			return nil, err
		}
		idx[name] = i
	}
	return idx, nil
}

func cell(row []any, i int) any {
	if i < 0 || i >= len(row) {
		return nil
	}
	return row[i]
}

func cellInt(row []any, i int) int {
	switch v := cell(row, i).(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

// cellFloat reports false for null cells.
func cellFloat(row []any, i int) (float64, bool) {
	switch v := cell(row, i).(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func cellString(row []any, i int) string {
	switch v := cell(row, i).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
