package reconcile

// Config holds the reconcile settings shared by every entity type.
type Config struct {
	// MinRecords refuses snapshots smaller than this against a non-empty catalog.
	MinRecords int `mapstructure:"min_records" default:"1"`

	// AllowEmpty lets an empty snapshot retire every active row.
	AllowEmpty bool `mapstructure:"allow_empty" default:"false"`

	// MaxRetireFraction refuses plans retiring more than this share of the
	// active set. Zero disables the check.
	MaxRetireFraction float64 `mapstructure:"max_retire_fraction" default:"0"`

	// BatchSize bounds the rows per INSERT statement during commit.
	BatchSize int `mapstructure:"batch_size" default:"500"`

	// TmpDir is the root under which snapshot archives are extracted.
	TmpDir string `mapstructure:"tmp_dir" default:""`

	// AgencyIdentity overrides the identity fields of agencies (comma separated).
	AgencyIdentity []string `mapstructure:"agency_identity" default:""`

	// RouteIdentity overrides the identity fields of routes (comma separated).
	RouteIdentity []string `mapstructure:"route_identity" default:""`

	// StopIdentity overrides the identity fields of stops (comma separated).
	StopIdentity []string `mapstructure:"stop_identity" default:""`
}

// Options returns the guard options configured for commits.
func (c Config) Options() Options {
	return Options{
		MinRecords:        c.MinRecords,
		AllowEmpty:        c.AllowEmpty,
		MaxRetireFraction: c.MaxRetireFraction,
	}
}

// IdentityFor returns the configured identity override for an entity type, if any.
func (c Config) IdentityFor(entity string) []string {
	var fields []string
	switch entity {
	case "agency":
		fields = c.AgencyIdentity
	case "route":
		fields = c.RouteIdentity
	case "stop":
		fields = c.StopIdentity
	}

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
