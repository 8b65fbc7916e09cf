package config

import (
	"fmt"
	"strings"
)

// ICSConfig holds the PRODID components of generated calendars.
type ICSConfig struct {
	CompanyName string
	ProductName string
	Version     string
	Language    string
}

// BuildProdID renders "-//Company//Product Version//Language". The version
// is omitted when empty.
func (cfg ICSConfig) BuildProdID() string {
	lang := cfg.Language
	if lang == "" {
		lang = "EN"
	}
	product := strings.TrimSpace(cfg.ProductName + " " + cfg.Version)
	return fmt.Sprintf("-//%s//%s//%s", cfg.CompanyName, product, lang)
}
