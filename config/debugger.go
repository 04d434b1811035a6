package config

type Debugger struct {
	Enabled *bool   `json:"enabled"`
	Listen  *string `json:"listen"`
}
