package config

// Ledger 账本配置
type Ledger struct {
	Difficulty *int   `json:"difficulty"`
	BatchSize  *int   `json:"batchSize"`
	MaxNonce   *int64 `json:"maxNonce"`
}
