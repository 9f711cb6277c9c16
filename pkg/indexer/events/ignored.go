package events

import "strings"

// ignoredTypes are bookkeeping and stock Cosmos SDK events with no analytics value.
var ignoredTypes = map[string]struct{}{
	// epoch storage
	"lava_new_epoch":             {},
	"lava_earliest_epoch":        {},
	"lava_fixated_params_change": {},
	"lava_fixated_params_clean":  {},

	// spec and params
	"lava_param_change": {},
	"lava_spec_add":     {},
	"lava_spec_refresh": {},
	"lava_spec_modify":  {},

	// ibc
	"update_client":         {},
	"denomination_trace":    {},
	"fungible_token_packet": {},
	"write_acknowledgement": {},
	"recv_packet":           {},
	"acknowledge_packet":    {},
	"send_packet":           {},

	// gov
	"submit_proposal":  {},
	"proposal_deposit": {},
	"proposal_vote":    {},
	"active_proposal":  {},

	// bank, staking, distribution
	"coin_received":         {},
	"coinbase":              {},
	"coin_spent":            {},
	"transfer":              {},
	"message":               {},
	"tx":                    {},
	"withdraw_rewards":      {},
	"withdraw_commission":   {},
	"delegate":              {},
	"redelegate":            {},
	"create_validator":      {},
	"edit_validator":        {},
	"unbond":                {},
	"complete_unbonding":    {},
	"complete_redelegation": {},
	"liveness":              {},
	"mint":                  {},
	"burn":                  {},
	"slash":                 {},
	"commission":            {},
	"rewards":               {},
	"set_withdraw_address":  {},

	// feegrant
	"use_feegrant":    {},
	"update_feegrant": {},
	"set_feegrant":    {},
	"revoke_feegrant": {},
}

var ignoredPrefixes = []string{"ibc_", "cosmos.authz."}

// IsIgnored reports whether typ is dropped without any row.
func IsIgnored(typ string) bool {
	if _, ok := ignoredTypes[typ]; ok {
		return true
	}
	for _, p := range ignoredPrefixes {
		if strings.HasPrefix(typ, p) {
			return true
		}
	}
	return false
}
