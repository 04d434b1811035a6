package core

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"review-ledger/config"
	"review-ledger/model"
)

// BlockStore persists sealed blocks, one row per block, together with the
// verification receipts for the reviews they contain.
type BlockStore interface {
	SaveBlock(ctx context.Context, block *model.Block, receipts []*model.ReviewVerification) error
	LoadBlocks(ctx context.Context) ([]*model.Block, error)
}

// PendingMirror keeps a durable copy of the pending pool so buffered reviews
// survive a restart. Mirror failures never fail a submission.
type PendingMirror interface {
	AppendPending(ctx context.Context, review *model.Review) error
	ClearPending(ctx context.Context) error
	PendingReviews(ctx context.Context) ([]*model.Review, error)
}

// reviewPos addresses one review inside the chain.
type reviewPos struct {
	block  int
	offset int
}

// Ledger 评审账本
// Owns the chain and the pending pool exclusively. The whole submit → check
// threshold → mine → clear pool → persist sequence runs under one mutex;
// callers only ever read blocks, never mutate them.
type Ledger struct {
	miner     *Miner
	batchSize int
	store     BlockStore
	mirror    PendingMirror

	mu       sync.Mutex
	chain    []*model.Block
	pending  []*model.Review
	articles map[int64][]reviewPos
}

// NewLedger builds a ledger from the persisted chain, or with a fresh
// genesis block when the store is empty or absent. Both collaborators are
// optional; a nil store keeps the chain in memory only.
func NewLedger(cfg *config.Ledger, store BlockStore, mirror PendingMirror) (*Ledger, error) {
	l := &Ledger{
		miner:     NewMiner(cfg),
		batchSize: DefaultBatchSize,
		store:     store,
		mirror:    mirror,
		articles:  make(map[int64][]reviewPos),
	}
	if cfg != nil && cfg.BatchSize != nil {
		l.batchSize = *cfg.BatchSize
	}

	ctx := context.Background()
	if store != nil {
		blocks, err := store.LoadBlocks(ctx)
		if err != nil {
			return nil, &PersistenceError{Op: "load blocks", Err: err}
		}
		l.restore(blocks)
	}
	if len(l.chain) == 0 {
		genesis, err := GenesisBlock()
		if err != nil {
			return nil, err
		}
		l.chain = []*model.Block{genesis}
		if store != nil {
			// Verification walks the chain from block 0, so the genesis row
			// has to be durable as well. Failing here costs durability, not
			// consistency.
			if err := store.SaveBlock(ctx, genesis, nil); err != nil {
				log.Errorf("Unable to persist genesis block: %v", err)
			}
		}
	}

	if mirror != nil {
		pending, err := mirror.PendingReviews(ctx)
		if err != nil {
			log.Errorf("Unable to restore pending reviews: %v", err)
		} else if len(pending) > 0 {
			l.pending = pending
			log.Infof("Restored %v pending reviews", len(pending))
		}
	}

	return l, nil
}

// restore rebuilds the chain and the article index from persisted blocks,
// preserving chain then in-block order.
func (l *Ledger) restore(blocks []*model.Block) {
	l.chain = blocks
	l.articles = make(map[int64][]reviewPos)
	for i, block := range blocks {
		l.indexBlock(i, block)
	}
}

func (l *Ledger) indexBlock(at int, block *model.Block) {
	for j, review := range block.Reviews {
		l.articles[review.ArticleId] = append(l.articles[review.ArticleId], reviewPos{block: at, offset: j})
	}
}

// SubmitReview validates and buffers a review, stamping its timestamp and
// content hash. Once the pool reaches the batch size a block is mined,
// appended and persisted, and the pool is cleared. A persistence failure is
// returned alongside the result: the chain keeps the block, durability is
// the caller's retry.
func (l *Ledger) SubmitReview(ctx context.Context, review *model.Review) (*model.SubmitResult, error) {
	if err := validateReview(review); err != nil {
		return nil, err
	}
	if !model.KnownReviewType(review.ReviewType) {
		log.Debugf("Unknown review type %q for article %v", review.ReviewType, review.ArticleId)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	review.Timestamp = time.Now().Unix()
	hash, err := ReviewHash(review)
	if err != nil {
		return nil, err
	}
	review.ReviewHash = hash

	l.pending = append(l.pending, review)
	if l.mirror != nil {
		if err := l.mirror.AppendPending(ctx, review); err != nil {
			log.Errorf("Unable to mirror pending review %v: %v", hash, err)
		}
	}

	if len(l.pending) < l.batchSize {
		return &model.SubmitResult{Status: model.SubmitStatusPending, ReviewHash: hash}, nil
	}

	block, err := l.miner.Mine(l.tip(), l.pending)
	if err != nil {
		// The batch stays pending, nothing is appended.
		return nil, err
	}

	l.chain = append(l.chain, block)
	l.indexBlock(len(l.chain)-1, block)
	l.pending = nil
	if l.mirror != nil {
		if err := l.mirror.ClearPending(ctx); err != nil {
			log.Errorf("Unable to clear pending mirror: %v", err)
		}
	}

	result := &model.SubmitResult{Status: model.SubmitStatusMined, ReviewHash: hash, Block: block}
	if l.store != nil {
		if err := l.store.SaveBlock(ctx, block, receiptsFor(block)); err != nil {
			return result, &PersistenceError{Op: "save block", Err: err}
		}
	}

	log.Infof("Sealed block %v with %v reviews", block.Index, len(block.Reviews))
	return result, nil
}

func validateReview(review *model.Review) error {
	switch {
	case review.ArticleId == 0:
		return &ValidationError{Field: "article_id"}
	case review.ReviewerId == "":
		return &ValidationError{Field: "reviewer_id"}
	case review.ReviewType == "":
		return &ValidationError{Field: "review_type"}
	case review.Comment == "":
		return &ValidationError{Field: "comment"}
	}
	return nil
}

func receiptsFor(block *model.Block) []*model.ReviewVerification {
	receipts := make([]*model.ReviewVerification, len(block.Reviews))
	for i, review := range block.Reviews {
		receipts[i] = &model.ReviewVerification{
			Id:         uuid.NewString(),
			ReviewHash: review.ReviewHash,
			ArticleId:  review.ArticleId,
			ReviewerId: review.ReviewerId,
			BlockIndex: block.Index,
			BlockHash:  block.Hash,
			Status:     model.VerificationStatusVerified,
			CreatedAt:  time.Now(),
		}
	}
	return receipts
}

func (l *Ledger) tip() *model.Block {
	return l.chain[len(l.chain)-1]
}

// ReviewsForArticle returns an article's reviews in chain then in-block
// order, via the article index.
func (l *Ledger) ReviewsForArticle(articleId int64) []*model.Review {
	l.mu.Lock()
	defer l.mu.Unlock()

	positions := l.articles[articleId]
	reviews := make([]*model.Review, len(positions))
	for i, pos := range positions {
		reviews[i] = l.chain[pos.block].Reviews[pos.offset]
	}
	return reviews
}

// Consensus 计算文章共识分
func (l *Ledger) Consensus(articleId int64) *model.ConsensusResult {
	return ConsensusScore(l.ReviewsForArticle(articleId))
}

// VerifyChain checks every block by recomputation.
func (l *Ledger) VerifyChain() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return VerifyChain(l.chain)
}

// VerifyBlockAt checks a single block, including its linkage.
func (l *Ledger) VerifyBlockAt(index int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= int64(len(l.chain)) {
		return false
	}
	var prev *model.Block
	if index > 0 {
		prev = l.chain[index-1]
	}
	return VerifyBlock(l.chain[index], prev)
}

// BlockByIndex 根据序号获取区块
func (l *Ledger) BlockByIndex(index int64) *model.Block {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= int64(len(l.chain)) {
		return nil
	}
	return l.chain[index]
}

// BlockByHash 根据哈希获取区块
func (l *Ledger) BlockByHash(hash string) *model.Block {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, block := range l.chain {
		if block.Hash == hash {
			return block
		}
	}
	return nil
}

// BlockWithReview returns the block containing the review with the given
// content hash, or nil.
func (l *Ledger) BlockWithReview(reviewHash string) *model.Block {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, block := range l.chain {
		for _, review := range block.Reviews {
			if review.ReviewHash == reviewHash {
				return block
			}
		}
	}
	return nil
}

// HasReview reports whether the block at index contains a review with the
// given content hash.
func (l *Ledger) HasReview(index int64, reviewHash string) bool {
	block := l.BlockByIndex(index)
	if block == nil {
		return false
	}
	for _, review := range block.Reviews {
		if review.ReviewHash == reviewHash {
			return true
		}
	}
	return false
}

// Stats 链状态统计
func (l *Ledger) Stats() *model.ChainStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0
	for _, block := range l.chain {
		total += len(block.Reviews)
	}

	return &model.ChainStats{
		TotalBlocks:      len(l.chain),
		TotalReviews:     total,
		PendingReviews:   len(l.pending),
		AverageConsensus: averageConsensus(l.chain),
		ChainValid:       VerifyChain(l.chain),
		LatestBlockHash:  l.tip().Hash,
	}
}

// ReviewerStats summarizes one reviewer's sealed reviews.
func (l *Ledger) ReviewerStats(reviewerId string) *model.ReviewerStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := &model.ReviewerStats{ReviewerId: reviewerId}
	articles := make(map[int64]struct{})
	var sum float64
	for _, block := range l.chain {
		for _, review := range block.Reviews {
			if review.ReviewerId != reviewerId {
				continue
			}
			stats.TotalReviews++
			sum += review.Rating
			articles[review.ArticleId] = struct{}{}
		}
	}
	if stats.TotalReviews > 0 {
		stats.AverageRating = sum / float64(stats.TotalReviews)
	}
	stats.Articles = len(articles)
	return stats
}

// PendingCount 待处理评审数
func (l *Ledger) PendingCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.pending)
}

// Height returns the index of the chain tip.
func (l *Ledger) Height() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.tip().Index
}
