package core

import (
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"review-ledger/config"
	"review-ledger/model"
)

const (
	DefaultDifficulty = 4
	DefaultBatchSize  = 10

	// DefaultMaxNonce bounds the proof-of-work search. The source model let
	// the nonce run forever; an exhausted budget surfaces as *MiningError
	// instead.
	DefaultMaxNonce int64 = 1 << 26
)

// Miner 区块矿工
// Seals review batches into blocks: Merkle root over the batch, then a nonce
// search until the block hash carries the required leading zeros.
type Miner struct {
	difficulty int
	maxNonce   int64
}

func NewMiner(cfg *config.Ledger) *Miner {
	m := &Miner{
		difficulty: DefaultDifficulty,
		maxNonce:   DefaultMaxNonce,
	}
	if cfg != nil && cfg.Difficulty != nil {
		m.difficulty = *cfg.Difficulty
	}
	if cfg != nil && cfg.MaxNonce != nil {
		m.maxNonce = *cfg.MaxNonce
	}

	return m
}

// Mine assembles and seals the next block on top of tip.
func (m *Miner) Mine(tip *model.Block, batch []*model.Review) (*model.Block, error) {
	root, err := MerkleRoot(batch)
	if err != nil {
		return nil, err
	}

	block := &model.Block{
		Index:        tip.Index + 1,
		Timestamp:    time.Now().Unix(),
		Reviews:      batch,
		PreviousHash: tip.Hash,
		MerkleRoot:   root,
	}

	target := strings.Repeat("0", m.difficulty)
	started := time.Now()
	for block.Nonce = 0; block.Nonce <= m.maxNonce; block.Nonce++ {
		hash, err := BlockHash(block)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(hash, target) {
			block.Hash = hash
			log.Debugf("Mined block %v, nonce %v, took %v", block.Index, block.Nonce, time.Since(started))
			return block, nil
		}
	}

	return nil, &MiningError{Attempts: m.maxNonce, Difficulty: m.difficulty}
}

// GenesisBlock builds block 0: no reviews, previous hash "0". The genesis
// hash is computed once, not mined.
func GenesisBlock() (*model.Block, error) {
	root, err := MerkleRoot(nil)
	if err != nil {
		return nil, err
	}

	block := &model.Block{
		Index:        0,
		Timestamp:    time.Now().Unix(),
		Reviews:      []*model.Review{},
		PreviousHash: model.GenesisPreviousHash,
		MerkleRoot:   root,
	}
	block.Hash, err = BlockHash(block)
	return block, err
}
