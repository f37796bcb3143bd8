package valueobjects

import (
	"crypto/rand"
	"math/big"
	"strings"

	"retro-backend/domain/config"
	pkgerrors "retro-backend/pkg/errors"
)

// Join codes avoid characters that read ambiguously when spoken or written
// down (0/O, 1/I/L).
const joinCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// JoinCode is the short, human-enterable code used to join a session. It is
// unique among sessions that are not yet finished.
type JoinCode struct {
	value string
}

// GenerateJoinCode creates a new random join code
func GenerateJoinCode() (JoinCode, error) {
	return generateJoinCodeWithConfig(config.DefaultDomainConfig())
}

func generateJoinCodeWithConfig(cfg *config.DomainConfig) (JoinCode, error) {
	buf := make([]byte, cfg.JoinCodeLength)
	max := big.NewInt(int64(len(joinCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return JoinCode{}, err
		}
		buf[i] = joinCodeAlphabet[n.Int64()]
	}
	return JoinCode{value: string(buf)}, nil
}

// ParseJoinCode normalizes and validates a join code entered by a user
func ParseJoinCode(s string) (JoinCode, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return JoinCode{}, pkgerrors.NewValidationError("join code cannot be empty")
	}
	for _, r := range s {
		if !strings.ContainsRune(joinCodeAlphabet, r) {
			return JoinCode{}, pkgerrors.NewValidationError("join code contains invalid characters")
		}
	}
	return JoinCode{value: s}, nil
}

// String returns the code value
func (c JoinCode) String() string {
	return c.value
}

// Equals checks if two join codes are equal
func (c JoinCode) Equals(other JoinCode) bool {
	return c.value == other.value
}

// IsZero checks if the join code is the zero value
func (c JoinCode) IsZero() bool {
	return c.value == ""
}

// MarshalJSON implements json.Marshaler
func (c JoinCode) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (c *JoinCode) UnmarshalJSON(data []byte) error {
	v, err := unquoteID(data, "JoinCode")
	if err != nil {
		return err
	}
	c.value = v
	return nil
}
