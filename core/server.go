package core

import (
	"context"

	log "github.com/sirupsen/logrus"

	"review-ledger/config"
	"review-ledger/model"
)

type Server struct {
	cfg      *config.Config
	postgres *Postgres
	redis    *Redis
	ledger   *Ledger

	api *Api
}

func NewServer(cfg *config.Config) *Server {
	s := &Server{cfg: cfg}

	var store BlockStore
	if cfg.Postgres != nil {
		s.postgres = NewPostgres(cfg.Postgres)
		if err := s.postgres.CreateSchema(); err != nil {
			log.Fatalf("Unable to create ledger schema: %v", err)
		}
		store = s.postgres
	}

	var mirror PendingMirror
	if cfg.Redis != nil && cfg.Redis.Enabled != nil && *cfg.Redis.Enabled {
		s.redis = NewRedis(cfg.Redis)
		mirror = s.redis
	}

	ledger, err := NewLedger(cfg.Ledger, store, mirror)
	if err != nil {
		log.Fatalf("Unable to initialize ledger: %v", err)
	}
	s.ledger = ledger
	log.Infof("Ledger at height %v, %v pending reviews", ledger.Height(), ledger.PendingCount())

	return s
}

func (s *Server) Start() {
	if s.cfg.Api != nil && s.cfg.Api.Enabled != nil && *s.cfg.Api.Enabled {
		s.api = NewApi(s)
	}
}

func (s *Server) Close() {
	if s.api != nil {
		s.api.Close()
	}
	if s.postgres != nil {
		s.postgres.Close()
	}
	if s.redis != nil {
		s.redis.Close()
	}
}

func (s *Server) Ledger() *Ledger {
	return s.ledger
}

// VerifyReview reports the authenticity of a sealed review: its verification
// receipt (when a store is configured), the block that carries it, and that
// block's integrity. Not finding the review is a result, not an error.
func (s *Server) VerifyReview(ctx context.Context, reviewHash string) (*model.VerifyResult, error) {
	block := s.ledger.BlockWithReview(reviewHash)

	if s.postgres != nil {
		receipt, err := s.postgres.VerificationByReviewHash(ctx, reviewHash)
		if err != nil {
			return nil, &PersistenceError{Op: "load verification", Err: err}
		}
		if receipt != nil && (block == nil || block.Hash != receipt.BlockHash) {
			return &model.VerifyResult{
				Verified:   false,
				Reason:     "chain does not match verification receipt",
				ReviewHash: reviewHash,
			}, nil
		}
	}

	if block == nil {
		return &model.VerifyResult{
			Verified:   false,
			Reason:     "review not found in blockchain",
			ReviewHash: reviewHash,
		}, nil
	}

	if !s.ledger.VerifyBlockAt(block.Index) {
		return &model.VerifyResult{
			Verified:   false,
			Reason:     "block integrity compromised",
			ReviewHash: reviewHash,
			BlockIndex: block.Index,
			BlockHash:  block.Hash,
		}, nil
	}

	return &model.VerifyResult{
		Verified:   true,
		ReviewHash: reviewHash,
		BlockIndex: block.Index,
		BlockHash:  block.Hash,
	}, nil
}
