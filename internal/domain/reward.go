package domain

// Reward type tags.
const (
	RewardPoints  = "points"
	RewardBadge   = "badge"
	RewardTrophy  = "trophy"
	RewardLevel   = "level"
	RewardPenalty = "penalty"
)

// Reward parameter keys.
const (
	RewardParamCategory   = "category"
	RewardParamMultiplier = "multiplier"
	RewardParamBadgeID    = "badgeId"
	RewardParamTrophyID   = "trophyId"
	RewardParamRevoke     = "revokeBadge"
)

// Reward is a declarative instruction attached to a rule. TargetID names the
// point category, badge, trophy, or level category the reward acts on.
type Reward struct {
	Type       string         `json:"type"`
	TargetID   string         `json:"targetId"`
	Amount     int64          `json:"amount,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Param returns a raw parameter value and whether the key is present.
func (r Reward) Param(key string) (any, bool) {
	if r.Parameters == nil {
		return nil, false
	}
	v, ok := r.Parameters[key]
	return v, ok
}

// RewardInstruction is a reward resolved against a concrete rule and trigger
// event, ready for the applier. RewardIndex is the reward's position within
// the rule's declared order; together with RuleID and EventID it forms the
// idempotency key for replay protection.
type RewardInstruction struct {
	RuleID      string `json:"ruleId"`
	RuleName    string `json:"ruleName,omitempty"`
	EventID     string `json:"eventId"`
	UserID      string `json:"userId"`
	RewardIndex int    `json:"rewardIndex"`
	Reward      Reward `json:"reward"`
}
