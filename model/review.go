package model

// Well-known review dimensions. The ledger does not enforce these, callers
// may submit any type string; unknown types are only logged.
const (
	ReviewTypeAccuracy    string = "accuracy"
	ReviewTypeBias               = "bias"
	ReviewTypeQuality            = "quality"
	ReviewTypeOriginality        = "originality"
	ReviewTypeCompliance         = "compliance"
)

var ReviewTypes = []string{
	ReviewTypeAccuracy,
	ReviewTypeBias,
	ReviewTypeQuality,
	ReviewTypeOriginality,
	ReviewTypeCompliance,
}

// Review 评审对象
// Timestamp and ReviewHash are assigned by the ledger at submission time;
// everything else comes from the caller. Metadata is passed through opaque.
type Review struct {
	ArticleId  int64                  `json:"article_id"`
	ReviewerId string                 `json:"reviewer_id"`
	ReviewType string                 `json:"review_type"`
	Rating     float64                `json:"rating"`
	Comment    string                 `json:"comment"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  int64                  `json:"timestamp"`
	ReviewHash string                 `json:"review_hash,omitempty"`
}

// KnownReviewType reports whether t is one of the well-known dimensions.
func KnownReviewType(t string) bool {
	for _, v := range ReviewTypes {
		if v == t {
			return true
		}
	}
	return false
}

const (
	SubmitStatusPending string = "pending"
	SubmitStatusMined          = "mined"
)

// SubmitResult is the outcome of a review submission: either a pending
// acknowledgment carrying the review hash, or the block the submission
// triggered.
type SubmitResult struct {
	Status     string `json:"status"`
	ReviewHash string `json:"review_hash"`
	Block      *Block `json:"block,omitempty"`
}
