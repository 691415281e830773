package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Params are the argon2id cost settings encoded into every hash.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultParams follows the OWASP argon2id baseline.
var DefaultParams = Params{Time: 3, Memory: 64 * 1024, Threads: 4, KeyLen: 32, SaltLen: 16}

// maxMemory caps the memory cost accepted from a stored hash.
const maxMemory = 1 << 20

var (
	// ErrInvalidHash indicates a malformed PHC string.
	ErrInvalidHash = errors.New("invalid hash format")
	// ErrIncompatibleVersion indicates an argon2 version other than 19.
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
)

// phc is a decoded $argon2id$v=..$m=..,t=..,p=..$salt$key string.
type phc struct {
	params Params
	salt   []byte
	key    []byte
}

func (h phc) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.Memory, h.params.Time, h.params.Threads,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(h.key),
	)
}

func decodePHC(encoded string) (phc, error) {
	var h phc

	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return h, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return h, ErrInvalidHash
	}
	if version != argon2.Version {
		return h, ErrIncompatibleVersion
	}

	p := &h.params
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return h, ErrInvalidHash
	}
	if p.Time == 0 || p.Threads == 0 || p.Memory == 0 || p.Memory > maxMemory {
		return h, ErrInvalidHash
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil || len(h.salt) == 0 {
		return h, ErrInvalidHash
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil || len(h.key) == 0 {
		return h, ErrInvalidHash
	}
	p.SaltLen = uint32(len(h.salt))
	p.KeyLen = uint32(len(h.key))

	return h, nil
}

// HashPassword returns an argon2id PHC string for password using DefaultParams.
func HashPassword(password string) (string, error) {
	return HashPasswordWith(password, DefaultParams)
}

// HashPasswordWith hashes password with explicit cost settings.
func HashPasswordWith(password string, p Params) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	h := phc{
		params: p,
		salt:   salt,
		key:    argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen),
	}
	return h.String(), nil
}

// VerifyPassword reports whether password matches encodedHash.
func VerifyPassword(password, encodedHash string) (bool, error) {
	h, err := decodePHC(encodedHash)
	if err != nil {
		return false, err
	}
	p := h.params
	key := argon2.IDKey([]byte(password), h.salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return subtle.ConstantTimeCompare(key, h.key) == 1, nil
}

// IsPasswordHash reports whether s looks like an argon2id PHC string.
func IsPasswordHash(s string) bool {
	return strings.HasPrefix(s, "$argon2id$") && strings.Count(s, "$") == 5
}

// CheckSecret compares a candidate password against a configured secret,
// which may be plaintext or a PHC string from HashPassword.
func CheckSecret(candidate, secret string) bool {
	if IsPasswordHash(secret) {
		ok, err := VerifyPassword(candidate, secret)
		return err == nil && ok
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(secret)) == 1
}
