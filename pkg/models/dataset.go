package models

import (
	"fmt"

	"github.com/gmolate/anonimizarpy/pkg/constants"
	"github.com/gmolate/anonimizarpy/pkg/errors"
)

// Record is one row of a dataset: a mapping from column name to value.
// Missing and empty values are legitimate, distinguishable categories for
// grouping purposes and are never coerced or dropped.
type Record map[string]string

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	clone := make(Record, len(r))
	for k, v := range r {
		clone[k] = v
	}
	return clone
}

// Dataset is an ordered collection of records sharing one schema.
// Generalization mutates field values in place; records are never added
// or removed.
type Dataset struct {
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}

// NewDataset creates an empty dataset with the given schema.
func NewDataset(columns []string) *Dataset {
	return &Dataset{
		Columns: append([]string(nil), columns...),
		Records: make([]Record, 0),
	}
}

// HasColumn reports whether the schema contains the named column.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// Append adds a record, checking it against the schema.
func (d *Dataset) Append(r Record) error {
	for col := range r {
		if !d.HasColumn(col) {
			return errors.NewDatasetError(errors.CodeSchemaMismatch,
				fmt.Sprintf("record has column %q not in schema", col))
		}
	}
	d.Records = append(d.Records, r)
	return nil
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	clone := NewDataset(d.Columns)
	clone.Records = make([]Record, len(d.Records))
	for i, r := range d.Records {
		clone.Records[i] = r.Clone()
	}
	return clone
}

// DropColumns removes the named columns from the schema and from every
// record. Names absent from the schema are skipped without error.
func (d *Dataset) DropColumns(names []string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}

	kept := make([]string, 0, len(d.Columns))
	for _, c := range d.Columns {
		if !drop[c] {
			kept = append(kept, c)
		}
	}
	d.Columns = kept

	for _, r := range d.Records {
		for n := range drop {
			delete(r, n)
		}
	}
}

// FieldRoles partitions the schema into the three disclosure-control
// roles. Direct identifiers are dropped before the engine runs,
// quasi-identifiers are subject to generalization, and the single
// sensitive attribute is only ever read to measure diversity.
type FieldRoles struct {
	DirectIdentifiers  []string `json:"direct_identifiers"`
	QuasiIdentifiers   []string `json:"quasi_identifiers"`
	SensitiveAttribute string   `json:"sensitive_attribute"`
}

// Validate checks the role declarations against a schema. A missing
// quasi-identifier or sensitive attribute is fatal because group
// statistics cannot be computed; missing direct identifiers are
// tolerated (the removal step skips them).
func (fr *FieldRoles) Validate(d *Dataset) error {
	if len(fr.QuasiIdentifiers) == 0 {
		return errors.WrapError(errors.ErrNoQuasiIdentifiers,
			errors.ErrorTypeConfiguration, errors.CodeInvalidRoles,
			"at least one quasi-identifier is required")
	}
	if fr.SensitiveAttribute == "" {
		return errors.WrapError(errors.ErrNoSensitiveAttribute,
			errors.ErrorTypeConfiguration, errors.CodeInvalidRoles,
			"a sensitive attribute is required")
	}
	for _, qi := range fr.QuasiIdentifiers {
		if !d.HasColumn(qi) {
			return errors.NewConfigurationError(errors.CodeMissingColumn,
				fmt.Sprintf("quasi-identifier column %q not in schema", qi))
		}
	}
	if !d.HasColumn(fr.SensitiveAttribute) {
		return errors.NewConfigurationError(errors.CodeMissingColumn,
			fmt.Sprintf("sensitive attribute column %q not in schema", fr.SensitiveAttribute))
	}
	return nil
}

// Threshold is the (k_min, l_min) pair every released group must meet.
type Threshold struct {
	MinK int `json:"min_k"`
	MinL int `json:"min_l"`
}

// DefaultThreshold returns the reference protocol threshold (2, 2).
func DefaultThreshold() Threshold {
	return Threshold{MinK: constants.DefaultMinK, MinL: constants.DefaultMinL}
}

// Validate checks the threshold bounds.
func (t Threshold) Validate() error {
	if t.MinK < 1 || t.MinL < 1 {
		return errors.WrapError(errors.ErrInvalidThreshold,
			errors.ErrorTypeConfiguration, errors.CodeInvalidThreshold,
			fmt.Sprintf("k=%d l=%d", t.MinK, t.MinL))
	}
	return nil
}

// GroupStats is the (k, l) pair of one equivalence class: k records
// share the group key and span l distinct sensitive values. Derived and
// pass-scoped; never part of final output.
type GroupStats struct {
	K int `json:"k"`
	L int `json:"l"`
}

// Satisfies reports whether the group meets the threshold.
func (gs GroupStats) Satisfies(t Threshold) bool {
	return gs.K >= t.MinK && gs.L >= t.MinL
}

// AnonymizationReport summarizes an engine run.
type AnonymizationReport struct {
	Records           int  `json:"records"`
	Passes            int  `json:"passes"`
	GeneralizedFields int  `json:"generalized_fields"`
	SuppressedRecords int  `json:"suppressed_records"`
	Converged         bool `json:"converged"`
	Exhausted         bool `json:"exhausted"`
}
