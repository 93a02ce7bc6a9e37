package services

import (
	"sort"
	"strings"
)

// Schema versions of the jobs table. Version 1 is the layout of the imported
// salary dataset; version 2 is the current model.
const (
	SchemaV1 = 1
	SchemaV2 = 2
)

type VersionedColumn struct {
	SchemaVersion int
	Column        string
}

// DimensionMap maps a logical aggregation dimension to the physical column
// that held it in each schema version.
type DimensionMap map[string][]VersionedColumn

var DefaultDimensions = DimensionMap{
	"location": {
		{SchemaV2, "location"},
		{SchemaV1, "company_location"},
		{SchemaV1, "employee_residence"},
	},
	"industry": {
		{SchemaV2, "job_category"},
		{SchemaV1, "industry"},
		{SchemaV1, "category"},
	},
	"category": {
		{SchemaV2, "job_category"},
	},
	"experience_level": {
		{SchemaV2, "experience_level"},
	},
	"employment_type": {
		{SchemaV2, "employment_type"},
	},
	"work_setting": {
		{SchemaV2, "work_setting"},
		{SchemaV1, "remote_ratio"},
	},
	"company_size": {
		{SchemaV2, "company_size"},
	},
	"work_year": {
		{SchemaV2, "work_year"},
	},
	"year": {
		{SchemaV2, "work_year"},
	},
	"currency": {
		{SchemaV2, "salary_currency"},
	},
	"residence": {
		{SchemaV2, "employee_residence"},
	},
	"employee_residence": {
		{SchemaV2, "employee_residence"},
	},
}

// Candidates returns the physical columns to try for dimension, newest schema
// version first. A dimension that is not in the map is its own only candidate.
func (m DimensionMap) Candidates(dimension string) []string {
	key := normalizeDimension(dimension)
	entries, ok := m[key]
	if !ok {
		return []string{dimension}
	}

	sorted := make([]VersionedColumn, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SchemaVersion > sorted[j].SchemaVersion
	})

	seen := make(map[string]struct{}, len(sorted))
	out := make([]string, 0, len(sorted))
	for _, e := range sorted {
		if _, dup := seen[e.Column]; dup {
			continue
		}
		seen[e.Column] = struct{}{}
		out = append(out, e.Column)
	}
	return out
}

// Resolve picks the first candidate present in columns and returns the column
// name exactly as the store reports it.
func (m DimensionMap) Resolve(dimension string, columns []string) (string, []string, bool) {
	candidates := m.Candidates(dimension)
	for _, candidate := range candidates {
		for _, col := range columns {
			if strings.EqualFold(candidate, col) {
				return col, candidates, true
			}
		}
	}
	return "", candidates, false
}

func normalizeDimension(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	return strings.ReplaceAll(d, "-", "_")
}
