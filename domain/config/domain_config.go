package config

// DomainConfig holds domain-level validation limits
type DomainConfig struct {
	MaxNoteTextLength    int
	MaxDisplayNameLength int
	JoinCodeLength       int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxNoteTextLength:    2000,
		MaxDisplayNameLength: 64,
		JoinCodeLength:       6,
	}
}
