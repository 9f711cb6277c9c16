package indexer

import "strconv"

// EventType is the discriminant of the events table.
type EventType int32

// Slot usage per event type. Columns not listed stay NULL.
//
//	StakeNewProvider            provider; t1 spec, t2 moniker; i1 stake applied block, i2 effective immediately (0/1), i3 geolocation; b1 stake
//	StakeUpdateProvider         provider; t1 moniker, t2 spec; i1 stake applied block; b1 stake
//	ProviderUnstakeCommit       provider; t1 moniker, t2 spec; i1 geolocation; b1 stake
//	FreezeProvider              provider; t1 reason, t2 chain ids; i1 freeze request block
//	UnfreezeProvider            provider; t1 chain ids
//	AddKeyToProject             consumer; t1 project, t2 key; i1 key type, i2 block
//	AddProjectToSubscription    consumer; t1 project name
//	ConflictDetectionReceived   consumer
//	DelKeyFromProject           consumer; t1 project, t2 key; i1 key type, i2 block
//	DelProjectToSubscription    consumer; t1 project name
//	ProviderJailed              provider; t1 chain id; b1 complaint cu, b2 serviced cu
//	VoteGotReveal               provider; t1 vote id
//	VoteRevealStarted           t1 vote id; i1 vote deadline
//	DetectionVoteResolved       provider (winner); t1 vote id; i1 no voters, i2 voters; b1 reward pool, b2 total votes
//	DetectionVoteUnresolved     t1 vote id, t2 vote failed; i1 no voters, i2 voters; b1 reward pool, b2 total votes
//	DelegateToProvider          provider; t1 counterparty, t2 chain id, t3 amount
//	ExpireSubscription          consumer
//	FreezeFromUnbond            provider; t1 chain id; b1 effective stake, b2 stake, b3 min spec stake
//	UnbondFromProvider          provider; t1 counterparty, t2 chain id; b1 amount
//	UnstakeFromUnbound          provider; t2 chain id, t3 vault; b1 min self delegation
//	RedelegateBetweenProviders  provider; t1 parties, t2 chains; b1 amount
//	ProviderBonusRewards        provider; t1 chain; r1 amount
//	ValidatorSlash              t1 validator address; r1 slash fraction
//	IPRPCPoolEmission           t1 leftovers
//	DistributionPoolsRefill     t1 next refill time; i1 remaining lifetime, i2 next refill block, i3 providers pool balance
//	ProviderTemporaryJailed     provider; t1 chain id, t2 duration; i1 end; b1 complaint cu, b2 serviced cu
//	DelegatorClaimRewards       provider (delegator); b1 claimed
//	SetSubscriptionPolicy       fulltext only
//	UnidentifiedEvent           t1 {"type": ..., attributes...}
//	ErrorEvent                  t1 {"type", "caller", "error"}, t2 caller
//
// Every row also carries the attribute dictionary in fulltext.
const (
	EventStakeNewProvider           EventType = 1
	EventStakeUpdateProvider        EventType = 2
	EventProviderUnstakeCommit      EventType = 3
	EventFreezeProvider             EventType = 4
	EventUnfreezeProvider           EventType = 5
	EventAddKeyToProject            EventType = 6
	EventAddProjectToSubscription   EventType = 7
	EventConflictDetectionReceived  EventType = 8
	EventDelKeyFromProject          EventType = 9
	EventDelProjectToSubscription   EventType = 10
	EventProviderJailed             EventType = 11
	EventVoteGotReveal              EventType = 12
	EventVoteRevealStarted          EventType = 13
	EventDetectionVoteResolved      EventType = 14
	EventDetectionVoteUnresolved    EventType = 15
	EventDelegateToProvider         EventType = 16
	EventExpireSubscription         EventType = 17
	EventFreezeFromUnbond           EventType = 18
	EventUnbondFromProvider         EventType = 19
	EventUnstakeFromUnbound         EventType = 20
	EventRedelegateBetweenProviders EventType = 21
	EventProviderBonusRewards       EventType = 22
	EventValidatorSlash             EventType = 23
	EventIPRPCPoolEmission          EventType = 24
	EventDistributionPoolsRefill    EventType = 25
	EventProviderTemporaryJailed    EventType = 26
	EventDelegatorClaimRewards      EventType = 27
	EventSetSubscriptionPolicy      EventType = 28

	EventUnidentified EventType = 1000
	EventError        EventType = 1001
)

var eventTypeNames = map[EventType]string{
	EventStakeNewProvider:           "StakeNewProvider",
	EventStakeUpdateProvider:        "StakeUpdateProvider",
	EventProviderUnstakeCommit:      "ProviderUnstakeCommit",
	EventFreezeProvider:             "FreezeProvider",
	EventUnfreezeProvider:           "UnfreezeProvider",
	EventAddKeyToProject:            "AddKeyToProject",
	EventAddProjectToSubscription:   "AddProjectToSubscription",
	EventConflictDetectionReceived:  "ConflictDetectionReceived",
	EventDelKeyFromProject:          "DelKeyFromProject",
	EventDelProjectToSubscription:   "DelProjectToSubscription",
	EventProviderJailed:             "ProviderJailed",
	EventVoteGotReveal:              "VoteGotReveal",
	EventVoteRevealStarted:          "VoteRevealStarted",
	EventDetectionVoteResolved:      "DetectionVoteResolved",
	EventDetectionVoteUnresolved:    "DetectionVoteUnresolved",
	EventDelegateToProvider:         "DelegateToProvider",
	EventExpireSubscription:         "ExpireSubscription",
	EventFreezeFromUnbond:           "FreezeFromUnbond",
	EventUnbondFromProvider:         "UnbondFromProvider",
	EventUnstakeFromUnbound:         "UnstakeFromUnbound",
	EventRedelegateBetweenProviders: "RedelegateBetweenProviders",
	EventProviderBonusRewards:       "ProviderBonusRewards",
	EventValidatorSlash:             "ValidatorSlash",
	EventIPRPCPoolEmission:          "IPRPCPoolEmission",
	EventDistributionPoolsRefill:    "DistributionPoolsRefill",
	EventProviderTemporaryJailed:    "ProviderTemporaryJailed",
	EventDelegatorClaimRewards:      "DelegatorClaimRewards",
	EventSetSubscriptionPolicy:      "SetSubscriptionPolicy",
	EventUnidentified:               "UnidentifiedEvent",
	EventError:                      "ErrorEvent",
}

func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return "EventType(" + strconv.Itoa(int(t)) + ")"
}
