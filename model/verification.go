package model

import "time"

const VerificationStatusVerified = "verified"

// ReviewVerification 评审存证行
// One row per review, written together with the block that sealed it. Maps a
// review hash back to its block so authenticity checks don't scan the chain.
type ReviewVerification struct {
	tableName struct{} `pg:"review_verifications"`

	Id         string    `pg:"id,pk"`
	ReviewHash string    `pg:"review_hash"`
	ArticleId  int64     `pg:"article_id"`
	ReviewerId string    `pg:"reviewer_id"`
	BlockIndex int64     `pg:"block_index,use_zero"`
	BlockHash  string    `pg:"block_hash"`
	Status     string    `pg:"status"`
	CreatedAt  time.Time `pg:"created_at"`
}
