package rpc

// Module query paths served by the Lava REST endpoint.
// Tendermint methods go through JSON-RPC and need no path.

const (
	// Specs
	showAllChainsPath = "/lavanet/lava/spec/show_all_chains"

	// Stake registries. Providers are listed per chain, frozen ones included.
	providersPath    = "/lavanet/lava/pairing/providers/%s?showFrozen=true"
	unstakeEntryPath = "/lavanet/lava/epochstorage/stake_storage/Unstake"

	// Plans
	plansListPath = "/lavanet/lava/plans/list"
)

// txSearchPerPage is the page size used when walking tx_search results.
const txSearchPerPage = 100
