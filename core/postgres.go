package core

import (
	"context"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"

	"review-ledger/config"
	"review-ledger/model"
)

type Postgres struct {
	db *pg.DB

	ctx context.Context
}

func NewPostgres(cfg *config.Postgres) *Postgres {
	ctx := context.Background()

	db := pg.Connect(&pg.Options{
		Addr:     *cfg.Address,
		User:     *cfg.Username,
		Password: *cfg.Password,
		Database: *cfg.Database,
	})
	if err := db.Ping(ctx); err != nil {
		panic(err)
	}

	return &Postgres{
		db: db,

		ctx: ctx,
	}
}

func (p *Postgres) Close() {
	p.db.Close()
}

// CreateSchema 创建账本数据表
func (p *Postgres) CreateSchema() error {
	models := []interface{}{
		(*model.BlockRecord)(nil),
		(*model.ReviewVerification)(nil),
	}

	for _, m := range models {
		err := p.db.Model(m).CreateTable(&orm.CreateTableOptions{
			IfNotExists: true,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// SaveBlock 写入区块数据
// The block row and its verification receipts land in one transaction.
func (p *Postgres) SaveBlock(ctx context.Context, block *model.Block, receipts []*model.ReviewVerification) error {
	record, err := model.NewBlockRecord(block)
	if err != nil {
		return err
	}

	return p.db.RunInTransaction(ctx, func(tx *pg.Tx) error {
		if _, err := tx.Model(record).Insert(); err != nil {
			return err
		}

		for _, receipt := range receipts {
			if _, err := tx.Model(receipt).Insert(); err != nil {
				return err
			}
		}

		return nil
	})
}

// LoadBlocks 读取整条链
func (p *Postgres) LoadBlocks(ctx context.Context) ([]*model.Block, error) {
	var records []model.BlockRecord
	if err := p.db.ModelContext(ctx, &records).Order("block_index ASC").Select(); err != nil {
		return nil, err
	}

	blocks := make([]*model.Block, len(records))
	for i := range records {
		block, err := records[i].Block()
		if err != nil {
			return nil, err
		}
		blocks[i] = block
	}
	return blocks, nil
}

// VerificationByReviewHash looks up the receipt written when the review was
// sealed. Returns nil without error when no receipt exists.
func (p *Postgres) VerificationByReviewHash(ctx context.Context, reviewHash string) (*model.ReviewVerification, error) {
	var receipt model.ReviewVerification
	err := p.db.ModelContext(ctx, &receipt).Where("review_hash = ?", reviewHash).First()
	if err == pg.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}
