package core

import (
	"review-ledger/model"
	"review-ledger/util"
)

// MerkleRoot 计算评审批次的Merkle根
// Leaves are the hashes of each review's canonical JSON form. Levels pair
// left to right, an odd node pairs with itself, parents hash the
// concatenation of the two child hex strings. An empty batch hashes to
// SHA256 of empty input.
func MerkleRoot(reviews []*model.Review) (string, error) {
	if len(reviews) == 0 {
		return util.SHA256Hex(nil), nil
	}

	leaves := make([]string, len(reviews))
	for i, review := range reviews {
		leaf, err := util.HashJSON(review)
		if err != nil {
			return "", err
		}
		leaves[i] = leaf
	}

	for len(leaves) > 1 {
		level := make([]string, 0, (len(leaves)+1)/2)
		for i := 0; i < len(leaves); i += 2 {
			left := leaves[i]
			right := left
			if i+1 < len(leaves) {
				right = leaves[i+1]
			}
			level = append(level, util.SHA256Hex([]byte(left+right)))
		}
		leaves = level
	}

	return leaves[0], nil
}
