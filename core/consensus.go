package core

import "review-ledger/model"

// ratingConsensus maps a rating group onto mean and a [0,1] agreement value.
// Lower population variance means higher agreement; the /4 normalizer is
// inherited from the original scoring model.
func ratingConsensus(ratings []float64) (mean, consensus float64) {
	for _, r := range ratings {
		mean += r
	}
	mean /= float64(len(ratings))

	var variance float64
	for _, r := range ratings {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(ratings))

	consensus = 1 - variance/4
	if consensus < 0 {
		consensus = 0
	}
	return mean, consensus
}

// ConsensusScore turns repeated reviews of one article into a single
// agreement signal. Ratings are grouped by review type; a type needs at
// least two ratings to carry a signal, and the overall score is the
// unweighted mean over the qualifying types.
func ConsensusScore(reviews []*model.Review) *model.ConsensusResult {
	if len(reviews) == 0 {
		return &model.ConsensusResult{
			ConsensusStatus: model.ConsensusStatusUnreviewed,
		}
	}

	groups := make(map[string][]float64)
	for _, review := range reviews {
		groups[review.ReviewType] = append(groups[review.ReviewType], review.Rating)
	}

	breakdown := make(map[string]*model.TypeConsensus)
	var overall float64
	for reviewType, ratings := range groups {
		if len(ratings) < 2 {
			continue
		}
		mean, consensus := ratingConsensus(ratings)
		breakdown[reviewType] = &model.TypeConsensus{
			MeanRating: mean,
			Consensus:  consensus,
		}
		overall += consensus
	}
	if len(breakdown) > 0 {
		overall /= float64(len(breakdown))
	}

	return &model.ConsensusResult{
		ConsensusScore:  overall,
		ConsensusStatus: consensusStatus(overall),
		TotalReviews:    len(reviews),
		ReviewBreakdown: breakdown,
	}
}

func consensusStatus(score float64) string {
	switch {
	case score >= 0.8:
		return model.ConsensusStatusApproved
	case score >= 0.6:
		return model.ConsensusStatusConditional
	default:
		return model.ConsensusStatusDisputed
	}
}

// averageConsensus is the chain-stats aggregate: all ratings of an article
// pooled regardless of type, articles with at least two ratings scored with
// the same variance mapping, averaged over the qualifying articles.
func averageConsensus(chain []*model.Block) float64 {
	articles := make(map[int64][]float64)
	for _, block := range chain {
		for _, review := range block.Reviews {
			articles[review.ArticleId] = append(articles[review.ArticleId], review.Rating)
		}
	}

	var sum float64
	var n int
	for _, ratings := range articles {
		if len(ratings) < 2 {
			continue
		}
		_, consensus := ratingConsensus(ratings)
		sum += consensus
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
