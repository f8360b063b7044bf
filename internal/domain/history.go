package domain

import "time"

// History detail keys written by the reward applier.
const (
	HistoryDetailRuleID      = "ruleId"
	HistoryDetailEventID     = "eventId"
	HistoryDetailRewardIndex = "rewardIndex"
	HistoryDetailCategory    = "category"
	HistoryDetailAmount      = "amount"
	HistoryDetailBadgeID     = "badgeId"
	HistoryDetailTrophyID    = "trophyId"
	HistoryDetailLevelID     = "levelId"
	HistoryDetailDuplicate   = "duplicate"
)

// RewardHistory is an append-only log entry for a single reward attempt.
// Failed attempts are recorded too, with Success=false and a reason.
type RewardHistory struct {
	ID            string         `json:"id"`
	UserID        string         `json:"userId"`
	RewardType    string         `json:"rewardType"`
	Details       map[string]any `json:"details,omitempty"`
	Success       bool           `json:"success"`
	AwardedAt     time.Time      `json:"awardedAt"`
	FailureReason string         `json:"failureReason,omitempty"`
}

// HistoryPage is a paginated slice of reward history entries.
type HistoryPage struct {
	Entries    []RewardHistory `json:"entries"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalCount int             `json:"totalCount"`
}
