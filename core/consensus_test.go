package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"review-ledger/model"
)

func ratedReview(articleId int64, reviewType string, rating float64) *model.Review {
	return &model.Review{
		ArticleId:  articleId,
		ReviewerId: "rev-1",
		ReviewType: reviewType,
		Rating:     rating,
		Comment:    "c",
	}
}

func TestConsensusScoreNoReviews(t *testing.T) {
	result := ConsensusScore(nil)

	require.Zero(t, result.ConsensusScore)
	require.Zero(t, result.TotalReviews)
	require.Equal(t, model.ConsensusStatusUnreviewed, result.ConsensusStatus)
}

func TestConsensusScoreIdenticalRatings(t *testing.T) {
	reviews := []*model.Review{
		ratedReview(1, model.ReviewTypeAccuracy, 4),
		ratedReview(1, model.ReviewTypeAccuracy, 4),
		ratedReview(1, model.ReviewTypeAccuracy, 4),
	}

	result := ConsensusScore(reviews)
	require.Equal(t, 1.0, result.ConsensusScore)
	require.Equal(t, model.ConsensusStatusApproved, result.ConsensusStatus)
	require.Equal(t, 3, result.TotalReviews)
	require.Equal(t, 4.0, result.ReviewBreakdown[model.ReviewTypeAccuracy].MeanRating)
	require.Equal(t, 1.0, result.ReviewBreakdown[model.ReviewTypeAccuracy].Consensus)
}

func TestConsensusScoreHighVarianceFloorsAtZero(t *testing.T) {
	// Ratings 5,1,5,1 have population variance exactly 4, so the consensus
	// floors at zero.
	reviews := []*model.Review{
		ratedReview(1, model.ReviewTypeAccuracy, 5),
		ratedReview(1, model.ReviewTypeAccuracy, 1),
		ratedReview(1, model.ReviewTypeAccuracy, 5),
		ratedReview(1, model.ReviewTypeAccuracy, 1),
	}

	result := ConsensusScore(reviews)
	breakdown := result.ReviewBreakdown[model.ReviewTypeAccuracy]
	require.Equal(t, 3.0, breakdown.MeanRating)
	require.Zero(t, breakdown.Consensus)
	require.Zero(t, result.ConsensusScore)
	require.Equal(t, model.ConsensusStatusDisputed, result.ConsensusStatus)
}

func TestConsensusScoreSingleRatingCarriesNoSignal(t *testing.T) {
	reviews := []*model.Review{
		ratedReview(1, model.ReviewTypeAccuracy, 5),
		ratedReview(1, model.ReviewTypeBias, 3),
		ratedReview(1, model.ReviewTypeBias, 3),
	}

	result := ConsensusScore(reviews)
	require.Equal(t, 3, result.TotalReviews)
	require.NotContains(t, result.ReviewBreakdown, model.ReviewTypeAccuracy)
	require.Contains(t, result.ReviewBreakdown, model.ReviewTypeBias)
	require.Equal(t, 1.0, result.ConsensusScore)
}

func TestConsensusScoreMixedTypes(t *testing.T) {
	reviews := []*model.Review{
		// perfect agreement on quality
		ratedReview(1, model.ReviewTypeQuality, 4),
		ratedReview(1, model.ReviewTypeQuality, 4),
		// variance 1 on bias: consensus 0.75
		ratedReview(1, model.ReviewTypeBias, 2),
		ratedReview(1, model.ReviewTypeBias, 4),
	}

	result := ConsensusScore(reviews)
	require.InDelta(t, 0.875, result.ConsensusScore, 1e-9)
	require.Equal(t, model.ConsensusStatusApproved, result.ConsensusStatus)
	require.InDelta(t, 0.75, result.ReviewBreakdown[model.ReviewTypeBias].Consensus, 1e-9)
}

func TestAverageConsensusPoolsRatingsPerArticle(t *testing.T) {
	chain := testChain(t,
		[]*model.Review{
			ratedReview(1, model.ReviewTypeAccuracy, 4),
			ratedReview(1, model.ReviewTypeBias, 4),
			// article 2 has a single rating and is excluded
			ratedReview(2, model.ReviewTypeAccuracy, 1),
		},
	)

	require.Equal(t, 1.0, averageConsensus(chain))
	require.Zero(t, averageConsensus(chain[:1]))
}
