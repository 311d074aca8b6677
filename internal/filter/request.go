package filter

import (
	"time"

	"github.com/docbase/docbase/pkg/types"
)

// Request is the structured filter input accepted by the search and
// deletion APIs: per-field constraints that get combined conjunctively.
// Zero-valued fields contribute no constraint.
type Request struct {
	Categories    []string
	Versions      []string
	DocumentID    string
	Text          string // substring match over stored chunk text
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// Build combines the supplied per-field constraints with And. Timestamps
// compare against the createdAt metadata field, which is stored as unix
// seconds.
func (r Request) Build() Filter {
	parts := make([]Filter, 0, 5)

	if len(r.Categories) > 0 {
		parts = append(parts, InStrings(types.FieldCategory, r.Categories...))
	}
	if len(r.Versions) > 0 {
		parts = append(parts, InStrings(types.FieldVersion, r.Versions...))
	}
	if r.DocumentID != "" {
		parts = append(parts, ByDocumentID(r.DocumentID))
	}
	if r.Text != "" {
		parts = append(parts, Contains(types.FieldText, r.Text))
	}
	if r.CreatedAfter != nil || r.CreatedBefore != nil {
		var gte, lte *types.Value
		if r.CreatedAfter != nil {
			v := types.Number(float64(r.CreatedAfter.Unix()))
			gte = &v
		}
		if r.CreatedBefore != nil {
			v := types.Number(float64(r.CreatedBefore.Unix()))
			lte = &v
		}
		parts = append(parts, Range(types.FieldCreatedAt, gte, lte))
	}

	return And(parts...)
}

// IsZero reports whether the request supplies no constraints.
func (r Request) IsZero() bool {
	return len(r.Categories) == 0 && len(r.Versions) == 0 &&
		r.DocumentID == "" && r.Text == "" &&
		r.CreatedAfter == nil && r.CreatedBefore == nil
}
