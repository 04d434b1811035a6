package config

type Config struct {
	Name     *string   `json:"name"`
	Debugger *Debugger `json:"debugger"`
	Logger   *Logger   `json:"logger"`
	Postgres *Postgres `json:"postgres"`
	Redis    *Redis    `json:"redis"`
	Ledger   *Ledger   `json:"ledger"`
	Api      *Api      `json:"api"`
}
