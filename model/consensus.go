package model

// 共识状态
const (
	ConsensusStatusUnreviewed  string = "unreviewed"
	ConsensusStatusApproved           = "approved"
	ConsensusStatusConditional        = "conditional"
	ConsensusStatusDisputed           = "disputed"
)

// TypeConsensus is the agreement signal for one review dimension of one
// article.
type TypeConsensus struct {
	MeanRating float64 `json:"mean_rating"`
	Consensus  float64 `json:"consensus"`
}

// ConsensusResult aggregates repeated reviews of an article into a single
// score with a per-type breakdown. Types with fewer than two ratings carry
// no signal and are excluded from the breakdown.
type ConsensusResult struct {
	ConsensusScore  float64                   `json:"consensus_score"`
	ConsensusStatus string                    `json:"consensus_status"`
	TotalReviews    int                       `json:"total_reviews"`
	ReviewBreakdown map[string]*TypeConsensus `json:"review_breakdown,omitempty"`
}

// ChainStats 链状态统计
type ChainStats struct {
	TotalBlocks      int     `json:"total_blocks"`
	TotalReviews     int     `json:"total_reviews"`
	PendingReviews   int     `json:"pending_reviews"`
	AverageConsensus float64 `json:"average_consensus"`
	ChainValid       bool    `json:"chain_valid"`
	LatestBlockHash  string  `json:"latest_block_hash"`
}

// ReviewerStats summarizes one reviewer's activity across the whole chain.
type ReviewerStats struct {
	ReviewerId    string  `json:"reviewer_id"`
	TotalReviews  int     `json:"total_reviews"`
	AverageRating float64 `json:"average_rating"`
	Articles      int     `json:"articles"`
}

// VerifyResult reports the authenticity of a single sealed review.
type VerifyResult struct {
	Verified   bool   `json:"verified"`
	Reason     string `json:"reason,omitempty"`
	ReviewHash string `json:"review_hash,omitempty"`
	BlockIndex int64  `json:"block_index,omitempty"`
	BlockHash  string `json:"block_hash,omitempty"`
}
