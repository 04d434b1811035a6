package core

import (
	"review-ledger/model"
	"review-ledger/util"
)

// blockPayload is the hashed form of a block: every field except the hash
// itself. Verification recomputes this with the stored nonce, it never
// re-mines.
type blockPayload struct {
	Index        int64           `json:"index"`
	Timestamp    int64           `json:"timestamp"`
	Reviews      []*model.Review `json:"reviews"`
	PreviousHash string          `json:"previous_hash"`
	MerkleRoot   string          `json:"merkle_root"`
	Nonce        int64           `json:"nonce"`
}

// BlockHash 计算区块哈希
func BlockHash(b *model.Block) (string, error) {
	reviews := b.Reviews
	if reviews == nil {
		reviews = []*model.Review{}
	}

	return util.HashJSON(&blockPayload{
		Index:        b.Index,
		Timestamp:    b.Timestamp,
		Reviews:      reviews,
		PreviousHash: b.PreviousHash,
		MerkleRoot:   b.MerkleRoot,
		Nonce:        b.Nonce,
	})
}

// ReviewHash hashes a review over its own fields only, with the hash field
// itself excluded. The timestamp is stamped before hashing, so it is part of
// the content.
func ReviewHash(r *model.Review) (string, error) {
	clone := *r
	clone.ReviewHash = ""
	return util.HashJSON(&clone)
}
