package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/flowmazonhq/flowmazon-backend/pkg/config"
)

// ErrInvalidHash signals a malformed Argon2id hash string.
var ErrInvalidHash = fmt.Errorf("invalid argon2id hash")

type hashParams struct {
	memory      uint32
	time        uint32
	parallelism uint8
	saltLen     uint32
	keyLen      uint32
}

// HashPassword derives an Argon2id hash and encodes it in PHC string form,
// so the parameters travel with the hash and can be tightened later without
// invalidating stored credentials.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	p := boundedParams(cfg)

	salt := make([]byte, p.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.parallelism, p.keyLen)

	encoded := fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		p.memory, p.time, p.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
	return encoded, nil
}

// VerifyPassword reports whether password matches the PHC-encoded hash.
// Comparison is constant time.
func VerifyPassword(password, encoded string) (bool, error) {
	p, salt, want, err := parseHash(encoded)
	if err != nil {
		return false, err
	}

	got := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.parallelism, p.keyLen)
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

func boundedParams(cfg config.PasswordConfig) hashParams {
	return hashParams{
		memory:      uint32(bound(cfg.ArgonMemoryKB, 8, 512*1024)),
		time:        uint32(bound(cfg.ArgonTime, 1, 10)),
		parallelism: uint8(bound(cfg.ArgonParallelism, 1, 255)),
		saltLen:     uint32(bound(cfg.ArgonSaltLen, 8, 64)),
		keyLen:      uint32(bound(cfg.ArgonKeyLen, 16, 64)),
	}
}

func parseHash(encoded string) (hashParams, []byte, []byte, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[1] != "argon2id" {
		return hashParams{}, nil, nil, ErrInvalidHash
	}

	var p hashParams
	for _, opt := range strings.Split(fields[3], ",") {
		name, raw, ok := strings.Cut(opt, "=")
		if !ok {
			return hashParams{}, nil, nil, ErrInvalidHash
		}
		value, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return hashParams{}, nil, nil, ErrInvalidHash
		}
		switch name {
		case "m":
			p.memory = uint32(value)
		case "t":
			p.time = uint32(value)
		case "p":
			if value > 255 {
				return hashParams{}, nil, nil, ErrInvalidHash
			}
			p.parallelism = uint8(value)
		}
	}

	salt, err := base64.RawStdEncoding.DecodeString(fields[4])
	if err != nil {
		return hashParams{}, nil, nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(fields[5])
	if err != nil {
		return hashParams{}, nil, nil, ErrInvalidHash
	}
	p.saltLen = uint32(len(salt))
	p.keyLen = uint32(len(key))

	return p, salt, key, nil
}

func bound(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
