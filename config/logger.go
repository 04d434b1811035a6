package config

type Logger struct {
	Level    *uint32 `json:"level"`
	Mode     *string `json:"mode"`
	Filename *string `json:"filename"`
}
