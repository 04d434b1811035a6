package model

import (
	"encoding/json"
	"time"
)

// GenesisPreviousHash is the fixed previous-hash of block 0.
const GenesisPreviousHash = "0"

// Block 区块对象
type Block struct {
	Index        int64     `json:"index"`
	Timestamp    int64     `json:"timestamp"`
	Reviews      []*Review `json:"reviews"`
	PreviousHash string    `json:"previous_hash"`
	MerkleRoot   string    `json:"merkle_root"`
	Nonce        int64     `json:"nonce"`
	Hash         string    `json:"hash"`
}

// BlockRecord 区块持久化行
type BlockRecord struct {
	tableName struct{} `pg:"blockchain_blocks"`

	Id           uint64    `pg:"id,pk"`
	BlockIndex   int64     `pg:"block_index,use_zero"`
	BlockHash    string    `pg:"block_hash"`
	PreviousHash string    `pg:"previous_hash"`
	Timestamp    time.Time `pg:"timestamp"`
	MerkleRoot   string    `pg:"merkle_root"`
	Nonce        int64     `pg:"nonce,use_zero"`
	ReviewsJson  string    `pg:"reviews_json"`
	CreatedAt    time.Time `pg:"created_at"`
}

// NewBlockRecord flattens a block into its persisted row form, reviews
// serialized as JSON.
func NewBlockRecord(b *Block) (*BlockRecord, error) {
	reviews := b.Reviews
	if reviews == nil {
		reviews = []*Review{}
	}
	data, err := json.Marshal(reviews)
	if err != nil {
		return nil, err
	}

	return &BlockRecord{
		BlockIndex:   b.Index,
		BlockHash:    b.Hash,
		PreviousHash: b.PreviousHash,
		Timestamp:    time.Unix(b.Timestamp, 0),
		MerkleRoot:   b.MerkleRoot,
		Nonce:        b.Nonce,
		ReviewsJson:  string(data),
	}, nil
}

// Block reconstructs the in-memory block, reviews deserialized from JSON.
func (r *BlockRecord) Block() (*Block, error) {
	reviews := make([]*Review, 0)
	if len(r.ReviewsJson) > 0 {
		if err := json.Unmarshal([]byte(r.ReviewsJson), &reviews); err != nil {
			return nil, err
		}
	}

	return &Block{
		Index:        r.BlockIndex,
		Timestamp:    r.Timestamp.Unix(),
		Reviews:      reviews,
		PreviousHash: r.PreviousHash,
		MerkleRoot:   r.MerkleRoot,
		Nonce:        r.Nonce,
		Hash:         r.BlockHash,
	}, nil
}
