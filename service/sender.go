package service

import (
	"os"

	"github.com/fredoxntz/store-automation/config"
)

// SenderDefaults is the sender identity stamped on every generated CJ
// order row. The values are constant for a whole output file.
type SenderDefaults struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// LoadSenderDefaults resolves the sender identity from configuration,
// letting a previously submitted CJ order file override the static
// values when one is configured and readable. Any read problem falls
// back silently; the configured values are always a complete answer.
func LoadSenderDefaults(cfg *config.SenderConfig) SenderDefaults {
	defaults := SenderDefaults{
		Name:    cfg.Name,
		Phone:   cfg.Phone,
		Address: cfg.Address,
	}
	if cfg.ExampleFile == "" {
		return defaults
	}

	data, err := os.ReadFile(cfg.ExampleFile)
	if err != nil {
		return defaults
	}
	table, err := DecodeTable(data, "", 0)
	if err != nil || table.Len() == 0 {
		return defaults
	}

	first := table.Rows[0]
	if v := first["보내는분성명"]; v != "" {
		defaults.Name = v
	}
	if v := first["보내는분전화번호"]; v != "" {
		defaults.Phone = v
	}
	if v := first["보내는분주소(전체,분할)"]; v != "" {
		defaults.Address = v
	}
	return defaults
}
