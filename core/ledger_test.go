package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"review-ledger/config"
	"review-ledger/model"
)

// memStore persists through the same row form as the Postgres store, so the
// round trip exercises the reviews_json serialization.
type memStore struct {
	records  []*model.BlockRecord
	receipts []*model.ReviewVerification
	failSave bool
}

func (s *memStore) SaveBlock(_ context.Context, block *model.Block, receipts []*model.ReviewVerification) error {
	if s.failSave {
		return errors.New("connection refused")
	}
	record, err := model.NewBlockRecord(block)
	if err != nil {
		return err
	}
	s.records = append(s.records, record)
	s.receipts = append(s.receipts, receipts...)
	return nil
}

func (s *memStore) LoadBlocks(context.Context) ([]*model.Block, error) {
	blocks := make([]*model.Block, len(s.records))
	for i, record := range s.records {
		block, err := record.Block()
		if err != nil {
			return nil, err
		}
		blocks[i] = block
	}
	return blocks, nil
}

type memMirror struct {
	pending []*model.Review
	cleared int
}

func (m *memMirror) AppendPending(_ context.Context, review *model.Review) error {
	m.pending = append(m.pending, review)
	return nil
}

func (m *memMirror) ClearPending(context.Context) error {
	m.pending = nil
	m.cleared++
	return nil
}

func (m *memMirror) PendingReviews(context.Context) ([]*model.Review, error) {
	return m.pending, nil
}

func ledgerConfig(difficulty, batchSize int) *config.Ledger {
	return &config.Ledger{Difficulty: &difficulty, BatchSize: &batchSize}
}

func testLedger(t *testing.T, store BlockStore, mirror PendingMirror) *Ledger {
	t.Helper()

	ledger, err := NewLedger(ledgerConfig(1, 10), store, mirror)
	require.NoError(t, err)
	return ledger
}

func submitReview(t *testing.T, l *Ledger, articleId int64, reviewer, reviewType string, rating float64, comment string) *model.SubmitResult {
	t.Helper()

	result, err := l.SubmitReview(context.Background(), &model.Review{
		ArticleId:  articleId,
		ReviewerId: reviewer,
		ReviewType: reviewType,
		Rating:     rating,
		Comment:    comment,
	})
	require.NoError(t, err)
	return result
}

func TestSubmitReviewValidation(t *testing.T) {
	ledger := testLedger(t, nil, nil)

	_, err := ledger.SubmitReview(context.Background(), &model.Review{
		ArticleId:  42,
		ReviewerId: "rev-1",
		ReviewType: model.ReviewTypeAccuracy,
		Rating:     5,
	})

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	require.Equal(t, "comment", validation.Field)
	// Nothing was buffered.
	require.Zero(t, ledger.PendingCount())
}

func TestSubmitReviewPendingAck(t *testing.T) {
	ledger := testLedger(t, nil, nil)

	result := submitReview(t, ledger, 42, "rev-1", model.ReviewTypeAccuracy, 5, "solid sourcing")
	require.Equal(t, model.SubmitStatusPending, result.Status)
	require.Len(t, result.ReviewHash, 64)
	require.Nil(t, result.Block)
	require.Equal(t, 1, ledger.PendingCount())
	require.EqualValues(t, 0, ledger.Height())
}

func TestBatchMiningScenario(t *testing.T) {
	// Ten accuracy reviews for article 42 with ratings alternating 5,1
	// trigger one auto-mined block.
	ledger := testLedger(t, nil, nil)

	var last *model.SubmitResult
	for i := 0; i < 10; i++ {
		rating := 5.0
		if i%2 == 1 {
			rating = 1.0
		}
		last = submitReview(t, ledger, 42, fmt.Sprintf("rev-%d", i), model.ReviewTypeAccuracy, rating, fmt.Sprintf("comment %d", i))
	}

	require.Equal(t, model.SubmitStatusMined, last.Status)
	require.NotNil(t, last.Block)
	require.EqualValues(t, 1, last.Block.Index)
	require.Len(t, last.Block.Reviews, 10)
	require.True(t, strings.HasPrefix(last.Block.Hash, "0"))
	require.Zero(t, ledger.PendingCount())
	require.True(t, ledger.VerifyChain())

	consensus := ledger.Consensus(42)
	require.Equal(t, 10, consensus.TotalReviews)
	breakdown := consensus.ReviewBreakdown[model.ReviewTypeAccuracy]
	require.Equal(t, 3.0, breakdown.MeanRating)
	require.Zero(t, breakdown.Consensus)
}

func TestTamperedChainFailsVerification(t *testing.T) {
	ledger := testLedger(t, nil, nil)
	for i := 0; i < 10; i++ {
		submitReview(t, ledger, 42, "rev-1", model.ReviewTypeAccuracy, 4, fmt.Sprintf("comment %d", i))
	}
	require.True(t, ledger.VerifyChain())

	ledger.BlockByIndex(1).Reviews[3].Rating = 1
	require.False(t, ledger.VerifyChain())
	require.False(t, ledger.VerifyBlockAt(1))
	require.False(t, ledger.Stats().ChainValid)
}

func TestReviewsForArticlePreservesOrder(t *testing.T) {
	ledger := testLedger(t, nil, nil)

	// Interleave two articles across two blocks.
	for block := 0; block < 2; block++ {
		for i := 0; i < 10; i++ {
			article := int64(1 + i%2)
			submitReview(t, ledger, article, "rev-1", model.ReviewTypeQuality, 3, fmt.Sprintf("b%d-%d", block, i))
		}
	}
	require.EqualValues(t, 2, ledger.Height())

	reviews := ledger.ReviewsForArticle(1)
	require.Len(t, reviews, 10)
	expected := []string{"b0-0", "b0-2", "b0-4", "b0-6", "b0-8", "b1-0", "b1-2", "b1-4", "b1-6", "b1-8"}
	for i, review := range reviews {
		require.Equal(t, expected[i], review.Comment)
	}

	require.Empty(t, ledger.ReviewsForArticle(99))
}

func TestPersistAndReload(t *testing.T) {
	store := &memStore{}
	ledger := testLedger(t, store, nil)
	for i := 0; i < 10; i++ {
		submitReview(t, ledger, 7, "rev-1", model.ReviewTypeOriginality, 4, fmt.Sprintf("comment %d", i))
	}
	// Genesis row plus the mined block.
	require.Len(t, store.records, 2)
	require.Len(t, store.receipts, 10)

	// Reload rebuilds the chain and the article index, and the chain
	// verifies identically.
	reloaded := testLedger(t, store, nil)
	require.EqualValues(t, 1, reloaded.Height())
	require.True(t, reloaded.VerifyChain())
	require.Len(t, reloaded.ReviewsForArticle(7), 10)
	require.Equal(t, ledger.BlockByIndex(1).Hash, reloaded.BlockByIndex(1).Hash)
}

func TestPersistenceFailureKeepsBlock(t *testing.T) {
	store := &memStore{failSave: true}
	ledger := testLedger(t, store, nil)

	var result *model.SubmitResult
	var err error
	for i := 0; i < 10; i++ {
		result, err = ledger.SubmitReview(context.Background(), &model.Review{
			ArticleId:  7,
			ReviewerId: "rev-1",
			ReviewType: model.ReviewTypeQuality,
			Rating:     4,
			Comment:    fmt.Sprintf("comment %d", i),
		})
	}

	var persistence *PersistenceError
	require.ErrorAs(t, err, &persistence)
	// The in-memory chain keeps the sealed block.
	require.NotNil(t, result.Block)
	require.EqualValues(t, 1, ledger.Height())
	require.True(t, ledger.VerifyChain())
	require.Zero(t, ledger.PendingCount())
}

func TestMiningBudgetLeavesPoolIntact(t *testing.T) {
	difficulty, batchSize := 64, 3
	maxNonce := int64(16)
	ledger, err := NewLedger(&config.Ledger{
		Difficulty: &difficulty,
		BatchSize:  &batchSize,
		MaxNonce:   &maxNonce,
	}, nil, nil)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		submitReview(t, ledger, 1, "rev-1", model.ReviewTypeBias, 3, fmt.Sprintf("comment %d", i))
	}
	_, err = ledger.SubmitReview(context.Background(), &model.Review{
		ArticleId:  1,
		ReviewerId: "rev-1",
		ReviewType: model.ReviewTypeBias,
		Rating:     3,
		Comment:    "third",
	})

	var mining *MiningError
	require.ErrorAs(t, err, &mining)
	require.EqualValues(t, 0, ledger.Height())
	require.Equal(t, 3, ledger.PendingCount())
}

func TestPendingMirrorLifecycle(t *testing.T) {
	mirror := &memMirror{}
	ledger := testLedger(t, nil, mirror)

	for i := 0; i < 9; i++ {
		submitReview(t, ledger, 5, "rev-1", model.ReviewTypeCompliance, 2, fmt.Sprintf("comment %d", i))
	}
	require.Len(t, mirror.pending, 9)

	// A restart picks the buffered reviews back up.
	restored := testLedger(t, nil, mirror)
	require.Equal(t, 9, restored.PendingCount())

	// The tenth review seals a block and clears the mirror.
	submitReview(t, ledger, 5, "rev-1", model.ReviewTypeCompliance, 2, "comment 9")
	require.Equal(t, 1, mirror.cleared)
	require.Empty(t, mirror.pending)
}

func TestBlockLookups(t *testing.T) {
	ledger := testLedger(t, nil, nil)
	for i := 0; i < 10; i++ {
		submitReview(t, ledger, 3, "rev-1", model.ReviewTypeAccuracy, 4, fmt.Sprintf("comment %d", i))
	}

	block := ledger.BlockByIndex(1)
	require.NotNil(t, block)
	require.Equal(t, block, ledger.BlockByHash(block.Hash))
	require.Nil(t, ledger.BlockByIndex(9))
	require.Nil(t, ledger.BlockByHash("no-such-hash"))

	hash := block.Reviews[0].ReviewHash
	require.True(t, ledger.HasReview(1, hash))
	require.False(t, ledger.HasReview(0, hash))
	require.Equal(t, block, ledger.BlockWithReview(hash))
	require.Nil(t, ledger.BlockWithReview("missing"))
}

func TestStatsAndReviewerStats(t *testing.T) {
	ledger := testLedger(t, nil, nil)
	for i := 0; i < 10; i++ {
		reviewer := "alice"
		if i%2 == 1 {
			reviewer = "bob"
		}
		submitReview(t, ledger, int64(1+i%2), reviewer, model.ReviewTypeQuality, float64(2+i%2), fmt.Sprintf("comment %d", i))
	}
	submitReview(t, ledger, 1, "alice", model.ReviewTypeQuality, 2, "pending one")

	stats := ledger.Stats()
	require.Equal(t, 2, stats.TotalBlocks)
	require.Equal(t, 10, stats.TotalReviews)
	require.Equal(t, 1, stats.PendingReviews)
	require.True(t, stats.ChainValid)
	require.Equal(t, 1.0, stats.AverageConsensus)
	require.Equal(t, ledger.BlockByIndex(1).Hash, stats.LatestBlockHash)

	alice := ledger.ReviewerStats("alice")
	require.Equal(t, 5, alice.TotalReviews)
	require.Equal(t, 2.0, alice.AverageRating)
	require.Equal(t, 1, alice.Articles)

	nobody := ledger.ReviewerStats("nobody")
	require.Zero(t, nobody.TotalReviews)
	require.Zero(t, nobody.AverageRating)
}
