package config

import (
	domaincfg "retro-backend/domain/config"
)

// StaticProvider serves fixed domain limits, used when no dynamic config
// file is configured.
type StaticProvider struct {
	cfg *domaincfg.DomainConfig
}

// NewStaticProvider creates a provider over the built-in defaults.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{cfg: domaincfg.DefaultDomainConfig()}
}

// DomainConfig implements ports.DomainConfigProvider.
func (p *StaticProvider) DomainConfig() *domaincfg.DomainConfig {
	return p.cfg
}
