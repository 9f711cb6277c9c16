package indexer

const ProviderStakesTableName = "provider_stakes"

// StakeStatus is the lifecycle state of a provider stake on one spec.
type StakeStatus int32

const (
	StakeActive    StakeStatus = 1
	StakeFrozen    StakeStatus = 2
	StakeUnstaking StakeStatus = 3
	StakeInactive  StakeStatus = 4
)

func (s StakeStatus) String() string {
	switch s {
	case StakeActive:
		return "active"
	case StakeFrozen:
		return "frozen"
	case StakeUnstaking:
		return "unstaking"
	case StakeInactive:
		return "inactive"
	default:
		return "unknown"
	}
}

// ProviderStakeColumns defines the schema for the provider_stakes table.
// (provider, spec_id) is unique, see the index in tables.go.
var ProviderStakeColumns = []ColumnDef{
	{Name: "provider", Type: "TEXT NOT NULL"},
	{Name: "spec_id", Type: "TEXT NOT NULL"},
	{Name: "stake", Type: "BIGINT"},
	{Name: "delegate_limit", Type: "BIGINT"},
	{Name: "delegate_total", Type: "BIGINT"},
	{Name: "delegate_commission", Type: "BIGINT"},
	{Name: "applied_height", Type: "BIGINT"},
	{Name: "geolocation", Type: "BIGINT"},
	{Name: "addons", Type: "TEXT NOT NULL DEFAULT ''"},
	{Name: "extensions", Type: "TEXT NOT NULL DEFAULT ''"},
	{Name: "status", Type: "INTEGER NOT NULL"},
	{Name: "block_id", Type: "BIGINT NOT NULL"},
}

// ProviderStake is the point-in-time stake of a provider on a spec. BlockID is the
// snapshot height that last stamped the row; older rows are swept to inactive.
type ProviderStake struct {
	Provider           string      `db:"provider" json:"provider"`
	SpecID             string      `db:"spec_id" json:"spec_id"`
	Stake              int64       `db:"stake" json:"stake"`
	DelegateLimit      int64       `db:"delegate_limit" json:"delegate_limit"`
	DelegateTotal      int64       `db:"delegate_total" json:"delegate_total"`
	DelegateCommission int64       `db:"delegate_commission" json:"delegate_commission"`
	AppliedHeight      int64       `db:"applied_height" json:"applied_height"`
	Geolocation        int64       `db:"geolocation" json:"geolocation"`
	Addons             string      `db:"addons" json:"addons"`
	Extensions         string      `db:"extensions" json:"extensions"`
	Status             StakeStatus `db:"status" json:"status"`
	BlockID            int64       `db:"block_id" json:"block_id"`
}

func (p *ProviderStake) Values() []any {
	return []any{
		p.Provider, p.SpecID, p.Stake, p.DelegateLimit, p.DelegateTotal, p.DelegateCommission,
		p.AppliedHeight, p.Geolocation, p.Addons, p.Extensions, int32(p.Status), p.BlockID,
	}
}

// StakeSnapshot is the full chain state gathered at one height.
type StakeSnapshot struct {
	Height    int64
	Stakes    []*ProviderStake
	Providers []Provider
	Specs     []Spec
	Plans     []Plan
}
