package events

// registry maps chain event types to their parsers. The caller name ends up in
// ErrorEvent rows.
func registry() map[string]parser {
	return map[string]parser{
		// pairing
		"lava_relay_payment":                {"parseRelayPayment", parseRelayPayment},
		"lava_stake_new_provider":           {"parseStakeNewProvider", parseStakeNewProvider},
		"lava_stake_update_provider":        {"parseStakeUpdateProvider", parseStakeUpdateProvider},
		"lava_provider_unstake_commit":      {"parseProviderUnstakeCommit", parseProviderUnstakeCommit},
		"lava_freeze_provider":              {"parseFreezeProvider", parseFreezeProvider},
		"lava_unfreeze_provider":            {"parseUnfreezeProvider", parseUnfreezeProvider},
		"lava_provider_reported":            {"parseProviderReported", parseProviderReported},
		"lava_provider_jailed":              {"parseProviderJailed", parseProviderJailed},
		"lava_provider_temporary_jailed":    {"parseProviderTemporaryJailed", parseProviderTemporaryJailed},
		"lava_provider_latest_block_report": {"parseProviderLatestBlockReport", parseProviderLatestBlockReport},

		// subscription and projects
		"lava_buy_subscription_event":            {"parseBuySubscription", parseBuySubscription},
		"lava_add_project_to_subscription_event": {"parseAddProjectToSubscription", parseAddProjectToSubscription},
		"lava_del_project_to_subscription_event": {"parseDelProjectToSubscription", parseDelProjectToSubscription},
		"lava_expire_subscription_event":         {"parseExpireSubscription", parseExpireSubscription},
		"lava_set_subscription_policy_event":     {"parseSetSubscriptionPolicy", parseSetSubscriptionPolicy},
		"lava_add_key_to_project_event":          {"parseAddKeyToProject", parseAddKeyToProject},
		"lava_del_key_from_project_event":        {"parseDelKeyFromProject", parseDelKeyFromProject},

		// conflict
		"lava_conflict_vote_got_commit":           {"parseConflictVoteGotCommit", parseConflictVoteGotCommit},
		"lava_response_conflict_detection":        {"parseResponseConflictDetection", parseResponseConflictDetection},
		"lava_conflict_detection_received":        {"parseConflictDetectionReceived", parseConflictDetectionReceived},
		"lava_conflict_vote_got_reveal":           {"parseConflictVoteGotReveal", parseConflictVoteGotReveal},
		"lava_conflict_vote_reveal_started":       {"parseConflictVoteRevealStarted", parseConflictVoteRevealStarted},
		"lava_conflict_detection_vote_resolved":   {"parseConflictDetectionVoteResolved", parseConflictDetectionVoteResolved},
		"lava_conflict_detection_vote_unresolved": {"parseConflictDetectionVoteUnresolved", parseConflictDetectionVoteUnresolved},

		// dualstaking
		"lava_delegate_to_provider":         {"parseDelegateToProvider", parseDelegateToProvider},
		"lava_unbond_from_provider":         {"parseUnbondFromProvider", parseUnbondFromProvider},
		"lava_redelegate_between_providers": {"parseRedelegateBetweenProviders", parseRedelegateBetweenProviders},
		"lava_delegator_claim_rewards":      {"parseDelegatorClaimRewards", parseDelegatorClaimRewards},
		"lava_validator_slash":              {"parseValidatorSlash", parseValidatorSlash},
		"lava_freeze_from_unbond":           {"parseFreezeFromUnbond", parseFreezeFromUnbond},
		"lava_unstake_from_unbond":          {"parseUnstakeFromUnbond", parseUnstakeFromUnbond},

		// rewards
		"lava_provider_bonus_rewards":    {"parseProviderBonusRewards", parseProviderBonusRewards},
		"lava_iprpc-pool-emmission":      {"parseIPRPCPoolEmission", parseIPRPCPoolEmission},
		"lava_iprpc_pool_emmission":      {"parseIPRPCPoolEmission", parseIPRPCPoolEmission},
		"lava_distribution_pools_refill": {"parseDistributionPoolsRefill", parseDistributionPoolsRefill},
	}
}
