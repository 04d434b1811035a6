package core

import "review-ledger/model"

// VerifyBlock recomputes a block's hash and Merkle root and compares them
// against the stored values; for non-genesis blocks it also checks linkage
// against prev. Pure recomputation, no mining, no side effects.
func VerifyBlock(block, prev *model.Block) bool {
	hash, err := BlockHash(block)
	if err != nil || hash != block.Hash {
		return false
	}

	root, err := MerkleRoot(block.Reviews)
	if err != nil || root != block.MerkleRoot {
		return false
	}

	if block.Index > 0 {
		if prev == nil || prev.Hash != block.PreviousHash {
			return false
		}
	}

	return true
}

// VerifyChain 验证整条链
// Short-circuits on the first corrupt block.
func VerifyChain(chain []*model.Block) bool {
	for i, block := range chain {
		var prev *model.Block
		if i > 0 {
			prev = chain[i-1]
		}
		if !VerifyBlock(block, prev) {
			return false
		}
	}

	return true
}
