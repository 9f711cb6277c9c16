package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	indexermodels "github.com/lavanet/jsinfo-indexer/pkg/db/models/indexer"
	"github.com/lavanet/jsinfo-indexer/pkg/rpc"
)

var (
	p1 = addr("p1")
	p2 = addr("p2")
	p3 = addr("p3")
	c1 = addr("c1")
)

// onlyEvents asserts the block produced exactly n generic rows of type want and nothing else.
func onlyEvents(t *testing.T, c *Context, want indexermodels.EventType, n int) []*indexermodels.Event {
	t.Helper()
	require.Len(t, c.Facts.Events, n)
	assert.Equal(t, n, c.Facts.Len(), "unexpected specialized fact rows")
	for _, e := range c.Facts.Events {
		assert.Equal(t, want, e.EventType)
		assert.Equal(t, int64(testHeight), e.BlockID)
		assert.Equal(t, "TXHASH", deref(e.Tx))
		assert.NotNil(t, e.Fulltext)
	}
	return c.Facts.Events
}

func TestParsers_WellFormed(t *testing.T) {
	tests := []struct {
		name  string
		event rpc.Event
		check func(t *testing.T, c *Context)
	}{
		{
			name: "stake new provider",
			event: event("lava_stake_new_provider",
				"spec", "ETH1", "provider", p1, "stakeAppliedBlock", "1000", "stake", "500ulava",
				"geolocation", "2", "effectiveImmediately", "false", "moniker", "alpha"),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventStakeNewProvider, 1)[0]
				assert.Equal(t, p1, deref(e.Provider))
				assert.Equal(t, "ETH1", deref(e.T1))
				assert.Equal(t, "alpha", deref(e.T2))
				assert.Equal(t, int64(1000), deref(e.I1))
				assert.Equal(t, int64(0), deref(e.I2))
				assert.Equal(t, int64(2), deref(e.I3))
				assert.Equal(t, int64(500), deref(e.B1))
				assert.Equal(t, "alpha", c.Entities.Staged().Providers[0].Moniker)
			},
		},
		{
			name:  "stake update provider",
			event: event("lava_stake_update_provider", "stakeAppliedBlock", "7", "stake", "9ulava", "moniker", "m", "spec", "LAV1", "provider", p1),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventStakeUpdateProvider, 1)[0]
				assert.Equal(t, "m", deref(e.T1))
				assert.Equal(t, "LAV1", deref(e.T2))
				assert.Equal(t, int64(9), deref(e.B1))
			},
		},
		{
			name:  "provider unstake commit",
			event: event("lava_provider_unstake_commit", "address", p1, "geolocation", "1", "moniker", "m", "stake", "42", "chainID", "ETH1"),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventProviderUnstakeCommit, 1)[0]
				assert.Equal(t, p1, deref(e.Provider))
				assert.Equal(t, int64(42), deref(e.B1))
				assert.Equal(t, "ETH1", deref(e.T2))
			},
		},
		{
			name:  "freeze provider",
			event: event("lava_freeze_provider", "providerAddress", p1, "freezeReason", "maintenance", "chainIDs", "[ETH1]", "freezeRequestBlock", "55"),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventFreezeProvider, 1)[0]
				assert.Equal(t, "maintenance", deref(e.T1))
				assert.Equal(t, "[ETH1]", deref(e.T2))
				assert.Equal(t, int64(55), deref(e.I1))
			},
		},
		{
			name:  "unfreeze provider",
			event: event("lava_unfreeze_provider", "providerAddress", p1, "chainIDs", "[ETH1]"),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventUnfreezeProvider, 1)[0]
				assert.Equal(t, "[ETH1]", deref(e.T1))
			},
		},
		{
			name: "provider reported",
			event: event("lava_provider_reported", "cu", "10", "disconnections", "1", "epoch", "300", "errors", "2",
				"project", c1+"-admin", "provider", p1, "timestamp", "2024-05-01 09:59:00 +0000 UTC",
				"total_complaint_this_epoch", "3", "chainID", "ETH1"),
			check: func(t *testing.T, c *Context) {
				require.Len(t, c.Facts.ProviderReports, 1)
				r := c.Facts.ProviderReports[0]
				assert.Equal(t, p1, deref(r.Provider))
				assert.Equal(t, int64(10), deref(r.CU))
				assert.Equal(t, int64(3), deref(r.TotalComplaintEpoch))
				assert.Equal(t, "ETH1", deref(r.ChainID))
				require.NotNil(t, r.Datetime)
				assert.Equal(t, 59, r.Datetime.Minute())
			},
		},
		{
			name:  "provider jailed",
			event: event("lava_provider_jailed", "chain_id", "ETH1", "complaint_cu", "100", "provider_address", p1, "serviced_cu", "50"),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventProviderJailed, 1)[0]
				assert.Equal(t, int64(100), deref(e.B1))
				assert.Equal(t, int64(50), deref(e.B2))
			},
		},
		{
			name: "provider temporary jailed",
			event: event("lava_provider_temporary_jailed", "chain_id", "ETH1", "complaint_cu", "100",
				"provider_address", p1, "serviced_cu", "50", "duration", "1h0m0s", "end", "1714557600"),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventProviderTemporaryJailed, 1)[0]
				assert.Equal(t, "ETH1", deref(e.T1))
				assert.Equal(t, "1h0m0s", deref(e.T2))
				assert.Equal(t, int64(1714557600), deref(e.I1))
			},
		},
		{
			name:  "provider latest block report",
			event: event("lava_provider_latest_block_report", "AXELAR", "12464562", "EVMOS", "20537109", "provider", p1),
			check: func(t *testing.T, c *Context) {
				require.Len(t, c.Facts.LatestBlockReports, 2)
				assert.Equal(t, "AXELAR", c.Facts.LatestBlockReports[0].ChainID)
				assert.Equal(t, int64(20537109), deref(c.Facts.LatestBlockReports[1].ChainBlockHeight))
				assert.Equal(t, p1, deref(c.Facts.LatestBlockReports[1].Provider))
			},
		},
		{
			name:  "buy subscription",
			event: event("lava_buy_subscription_event", "consumer", c1, "duration", "3", "plan", "explorer"),
			check: func(t *testing.T, c *Context) {
				require.Len(t, c.Facts.SubscriptionBuys, 1)
				s := c.Facts.SubscriptionBuys[0]
				assert.Equal(t, c1, deref(s.Consumer))
				assert.Equal(t, int64(3), deref(s.Duration))
				assert.Equal(t, "explorer", deref(s.Plan))
				assert.Len(t, c.Entities.Staged().Plans, 1)
			},
		},
		{
			name:  "add project to subscription",
			event: event("lava_add_project_to_subscription_event", "subscription", c1, "projectName", "admin"),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventAddProjectToSubscription, 1)[0]
				assert.Equal(t, c1, deref(e.Consumer))
				assert.Equal(t, "admin", deref(e.T1))
			},
		},
		{
			name:  "del project from subscription",
			event: event("lava_del_project_to_subscription_event", "subscription", c1, "projectName", "admin"),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventDelProjectToSubscription, 1)[0]
				assert.Equal(t, c1, deref(e.Consumer))
			},
		},
		{
			name:  "expire subscription",
			event: event("lava_expire_subscription_event", "consumer", c1),
			check: func(t *testing.T, c *Context) {
				onlyEvents(t, c, indexermodels.EventExpireSubscription, 1)
			},
		},
		{
			name:  "set subscription policy",
			event: event("lava_set_subscription_policy_event", "policy", "{}"),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventSetSubscriptionPolicy, 1)[0]
				assert.JSONEq(t, `{"policy":"{}"}`, deref(e.Fulltext))
			},
		},
		{
			name:  "add key to project",
			event: event("lava_add_key_to_project_event", "project", c1+"-admin", "key", p2, "keytype", "1", "block", "1199"),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventAddKeyToProject, 1)[0]
				assert.Equal(t, c1, deref(e.Consumer))
				assert.Equal(t, c1+"-admin", deref(e.T1))
				assert.Equal(t, p2, deref(e.T2))
				assert.Equal(t, int64(1), deref(e.I1))
				assert.Equal(t, int64(1199), deref(e.I2))
				assert.Equal(t, int64(testHeight), e.BlockID)
			},
		},
		{
			name:  "del key from project",
			event: event("lava_del_key_from_project_event", "project", c1+"-admin", "key", p2, "keytype", "2", "block", "1199"),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventDelKeyFromProject, 1)[0]
				assert.Equal(t, c1, deref(e.Consumer))
				assert.Equal(t, p2, deref(e.T2))
			},
		},
		{
			name:  "conflict vote got commit",
			event: event("lava_conflict_vote_got_commit", "voteID", "17", "provider", p1),
			check: func(t *testing.T, c *Context) {
				require.Len(t, c.Facts.ConflictVotes, 1)
				assert.Equal(t, "17", deref(c.Facts.ConflictVotes[0].VoteID))
				assert.Equal(t, p1, deref(c.Facts.ConflictVotes[0].Provider))
			},
		},
		{
			name: "response conflict detection",
			event: event("lava_response_conflict_detection", "requestBlock", "100", "voteDeadline", "120",
				"apiInterface", "jsonrpc", "client", c1, "voteID", "17", "chainID", "ETH1",
				"apiURL", "/", "connectionType", "POST", "requestData", "huge body"),
			check: func(t *testing.T, c *Context) {
				require.Len(t, c.Facts.ConflictResponses, 1)
				r := c.Facts.ConflictResponses[0]
				assert.Equal(t, c1, deref(r.Consumer))
				assert.Equal(t, "ETH1", deref(r.SpecID))
				assert.Equal(t, int64(120), deref(r.VoteDeadline))
				assert.Nil(t, r.RequestData)
				staged := c.Entities.Staged()
				assert.Len(t, staged.Specs, 1)
				assert.Len(t, staged.Consumers, 1)
			},
		},
		{
			name:  "conflict detection received",
			event: event("lava_conflict_detection_received", "client", c1),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventConflictDetectionReceived, 1)[0]
				assert.Equal(t, c1, deref(e.Consumer))
			},
		},
		{
			name:  "conflict vote got reveal",
			event: event("lava_conflict_vote_got_reveal", "voteID", "17", "provider", p1),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventVoteGotReveal, 1)[0]
				assert.Equal(t, "17", deref(e.T1))
			},
		},
		{
			name:  "conflict vote reveal started",
			event: event("lava_conflict_vote_reveal_started", "voteID", "17", "voteDeadline", "130"),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventVoteRevealStarted, 1)[0]
				assert.Equal(t, int64(130), deref(e.I1))
			},
		},
		{
			name: "conflict vote resolved",
			event: event("lava_conflict_detection_vote_resolved", "voteID", "17", "winner", p1,
				"NumOfNoVoters", "1", "NumOfVoters", "5", "RewardPool", "1000ulava", "TotalVotes", "9000"),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventDetectionVoteResolved, 1)[0]
				assert.Equal(t, p1, deref(e.Provider))
				assert.Equal(t, int64(1000), deref(e.B1))
				assert.Equal(t, int64(9000), deref(e.B2))
			},
		},
		{
			name:  "conflict vote unresolved",
			event: event("lava_conflict_detection_vote_unresolved", "voteID", "17", "voteFailed", "true", "NumOfVoters", "5"),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventDetectionVoteUnresolved, 1)[0]
				assert.Equal(t, "true", deref(e.T2))
				assert.Equal(t, int64(5), deref(e.I2))
			},
		},
		{
			name:  "delegate to provider",
			event: event("lava_delegate_to_provider", "delegator", p2, "provider", p1, "chainID", "ETH1", "amount", "10ulava"),
			check: func(t *testing.T, c *Context) {
				rows := onlyEvents(t, c, indexermodels.EventDelegateToProvider, 2)
				assert.Equal(t, p2, deref(rows[0].Provider))
				assert.Equal(t, "provider: "+p1, deref(rows[0].T1))
				assert.Equal(t, p1, deref(rows[1].Provider))
				assert.Equal(t, "delegator: "+p2, deref(rows[1].T1))
				assert.Equal(t, "10ulava", deref(rows[1].T3))
				assert.Len(t, c.Entities.Staged().Providers, 2)
			},
		},
		{
			name:  "unbond from provider",
			event: event("lava_unbond_from_provider", "delegator", p2, "provider", "empty_provider", "chainID", "", "amount", "10ulava"),
			check: func(t *testing.T, c *Context) {
				rows := onlyEvents(t, c, indexermodels.EventUnbondFromProvider, 1)
				assert.Equal(t, p2, deref(rows[0].Provider))
				assert.Nil(t, rows[0].T1)
				assert.Equal(t, int64(10), deref(rows[0].B1))
			},
		},
		{
			name: "redelegate between providers",
			event: event("lava_redelegate_between_providers", "delegator", p3, "from_provider", p1, "to_provider", p2,
				"from_chainID", "ETH1", "to_chainID", "LAV1", "amount", "5ulava"),
			check: func(t *testing.T, c *Context) {
				rows := onlyEvents(t, c, indexermodels.EventRedelegateBetweenProviders, 3)
				assert.Equal(t, p1, deref(rows[0].Provider))
				assert.Equal(t, p2, deref(rows[1].Provider))
				assert.Equal(t, p3, deref(rows[2].Provider))
				assert.Equal(t, "from_chain: ETH1, to_chain: LAV1", deref(rows[2].T2))
			},
		},
		{
			name:  "delegator claim rewards",
			event: event("lava_delegator_claim_rewards", "delegator", p2, "claimed", "77ulava"),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventDelegatorClaimRewards, 1)[0]
				assert.Equal(t, p2, deref(e.Provider))
				assert.Equal(t, int64(77), deref(e.B1))
			},
		},
		{
			name:  "validator slash",
			event: event("lava_validator_slash", "validator_address", "lava@valoper1xyz", "slash_fraction", "0.01"),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventValidatorSlash, 1)[0]
				assert.InDelta(t, 0.01, deref(e.R1), 1e-9)
			},
		},
		{
			name: "freeze from unbond",
			event: event("lava_freeze_from_unbond", "chain_id", "ETH1", "effective_stake", "1ulava", "stake", "2ulava",
				"min_spec_stake", "3ulava", "provider_provider", p1, "moniker", "alpha"),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventFreezeFromUnbond, 1)[0]
				assert.Equal(t, int64(3), deref(e.B3))
				assert.Equal(t, "alpha", c.Entities.Staged().Providers[0].Moniker)
			},
		},
		{
			name: "unstake from unbond",
			event: event("lava_unstake_from_unbond", "provider", p1, "provider_provider", p2, "chainID", "ETH1",
				"provider_vault", p1, "min_self_delegation", "100ulava"),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventUnstakeFromUnbound, 1)[0]
				assert.Equal(t, p1, deref(e.Provider))
				assert.Equal(t, p1, deref(e.T3))
			},
		},
		{
			name:  "provider bonus rewards",
			event: event("lava_provider_bonus_rewards", p1+" ETH1", "100", p1+" LAV1", "7", p2+" ETH1", "12"),
			check: func(t *testing.T, c *Context) {
				rows := onlyEvents(t, c, indexermodels.EventProviderBonusRewards, 3)
				assert.Equal(t, "LAV1", deref(rows[1].T1))
				assert.InDelta(t, 7, deref(rows[1].R1), 1e-9)
				assert.JSONEq(t, `{"chain":"ETH1","amount":12}`, deref(rows[2].Fulltext))
			},
		},
		{
			name:  "iprpc pool emission",
			event: event("lava_iprpc_pool_emmission", "iprpc_rewards_leftovers", "10ulava"),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventIPRPCPoolEmission, 1)[0]
				assert.Equal(t, "10ulava", deref(e.T1))
			},
		},
		{
			name:  "iprpc pool emission dashed",
			event: event("lava_iprpc-pool-emmission", "iprpc_rewards_leftovers", "10ulava"),
			check: func(t *testing.T, c *Context) {
				onlyEvents(t, c, indexermodels.EventIPRPCPoolEmission, 1)
			},
		},
		{
			name: "distribution pools refill",
			event: event("lava_distribution_pools_refill", "allocation_pool_remaining_lifetime", "40",
				"next_refill_block", "1300", "providers_distribution_pool_balance", "123ulava", "next_refill_time", "2024-06-01"),
			check: func(t *testing.T, c *Context) {
				e := onlyEvents(t, c, indexermodels.EventDistributionPoolsRefill, 1)[0]
				assert.Equal(t, int64(40), deref(e.I1))
				assert.Equal(t, int64(123), deref(e.I3))
				assert.Equal(t, "2024-06-01", deref(e.T1))
			},
		},
	}

	covered := map[string]bool{}
	for _, tt := range tests {
		covered[tt.event.Type] = true
		t.Run(tt.name, func(t *testing.T) {
			c := dispatch(t, tt.event)
			tt.check(t, c)
			assert.Len(t, c.Entities.Staged().Txs, 1)
		})
	}

	t.Run("every parser is covered", func(t *testing.T) {
		for typ := range registry() {
			assert.True(t, covered[typ], "no well-formed case for %s", typ)
		}
	})
}

func TestParsers_VerificationDropsRow(t *testing.T) {
	tests := []struct {
		name  string
		event rpc.Event
	}{
		{"relay payment without provider", event("lava_relay_payment", "CU", "20", "chainID", "ETH1")},
		{"stake new provider without provider", event("lava_stake_new_provider", "spec", "ETH1")},
		{"unstake commit with empty address", event("lava_provider_unstake_commit", "address", "", "moniker", "m", "chainID", "ETH1")},
		{"del project without subscription", event("lava_del_project_to_subscription_event", "projectName", "admin")},
		{"latest block report without provider", event("lava_provider_latest_block_report", "ETH1", "10")},
		{"delegate without parties", event("lava_delegate_to_provider", "chainID", "ETH1")},
		{"unbond with module accounts only", event("lava_unbond_from_provider", "delegator", "empty_provider", "provider", "empty_provider")},
		{"bonus rewards without entries", event("lava_provider_bonus_rewards")},
		{"validator slash without validator", event("lava_validator_slash", "slash_fraction", "0.1")},
		{"iprpc emission without leftovers", event("lava_iprpc_pool_emmission")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := dispatch(t, tt.event)
			assert.Zero(t, c.Facts.Len())
			assert.Zero(t, c.Entities.Staged().Len())
		})
	}
}

func TestRelayPayment_EndToEnd(t *testing.T) {
	c := dispatch(t, event("lava_relay_payment",
		"provider", p1, "chainID", "ETH1", "CU", "20", "BasePay", "150000ulava", "relayNumber", "5",
		"client", c1, "QoSSync", "0.9", "ExcellenceQoSLatency", "1"))

	require.Len(t, c.Facts.RelayPayments, 1)
	assert.Equal(t, 1, c.Facts.Len())
	r := c.Facts.RelayPayments[0]
	assert.Equal(t, p1, deref(r.Provider))
	assert.Equal(t, "ETH1", deref(r.SpecID))
	assert.Equal(t, int64(20), deref(r.CU))
	assert.Equal(t, int64(150000), deref(r.Pay))
	assert.Equal(t, int64(5), deref(r.Relays))
	assert.InDelta(t, 0.9, deref(r.QoSSync), 1e-9)
	assert.InDelta(t, 1, deref(r.QoSLatencyExc), 1e-9)
	assert.Equal(t, testTime, r.Datetime)

	staged := c.Entities.Staged()
	assert.Equal(t, []indexermodels.Provider{{Address: p1}}, staged.Providers)
	assert.Equal(t, []indexermodels.Spec{{ID: "ETH1"}}, staged.Specs)
	assert.Equal(t, []indexermodels.Consumer{{Address: c1}}, staged.Consumers)
	assert.Equal(t, []indexermodels.Tx{{Hash: "TXHASH", BlockID: testHeight}}, staged.Txs)
}

func TestRelayPayment_SuffixedBatchKeepsLastValue(t *testing.T) {
	c := dispatch(t, event("lava_relay_payment",
		"provider.0", p1, "CU.0", "20", "chainID.0", "ETH1",
		"provider.1", p2, "CU.1", "35", "chainID.1", "LAV1"))

	require.Len(t, c.Facts.RelayPayments, 1)
	r := c.Facts.RelayPayments[0]
	assert.Equal(t, p2, deref(r.Provider))
	assert.Equal(t, int64(35), deref(r.CU))
	assert.Equal(t, "LAV1", deref(r.SpecID))
}
