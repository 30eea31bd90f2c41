package reconcile

import (
	"transit-catalog/core/reconcile"
	"transit-catalog/feature/gtfs/source"
)

// AgencyAdapter reconciles agency.txt.
type AgencyAdapter struct {
	profile reconcile.EntityProfile
}

// NewAgencyAdapter creates an agency adapter. A non-empty identity overrides the default.
func NewAgencyAdapter(identity []string) (*AgencyAdapter, error) {
	profile, err := AgencyProfile().WithIdentity(identity)
	if err != nil {
		return nil, err
	}
	return &AgencyAdapter{profile: profile}, nil
}

func (a *AgencyAdapter) Name() string { return EntityAgency }
func (a *AgencyAdapter) Profile() reconcile.EntityProfile { return a.profile }
func (a *AgencyAdapter) FileName() string { return "agency.txt" }

func (a *AgencyAdapter) Required() []string {
	return []string{"agency_id", "agency_name"}
}

// Parse reads an agency. agency_id must be an integer.
func (a *AgencyAdapter) Parse(row source.Row) (reconcile.Record, error) {
	id, err := row.Int("agency_id")
	if err != nil {
		return reconcile.Record{}, err
	}
	return reconcile.Record{
		NaturalKey: canonicalInt(id),
		Attributes: map[string]string{
			"agency_name": row.Get("agency_name"),
		},
	}, nil
}

func (a *AgencyAdapter) Row(rec reconcile.Record) map[string]any {
	return map[string]any{
		"orig_id":     mustInt(rec.NaturalKey),
		"agency_name": rec.Attributes["agency_name"],
	}
}
