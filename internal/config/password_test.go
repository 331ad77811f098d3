package config

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPasswordConfig(t *testing.T) {
	tests := []struct {
		name     string
		cost     string
		wantCost int
		wantErr  bool
	}{
		{"default", "", 12, false},
		{"minimum", "10", 10, false},
		{"maximum", "14", 14, false},
		{"too low", "9", 0, true},
		{"too high", "15", 0, true},
		{"not a number", "high", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BCRYPT_COST", tt.cost)
			t.Setenv("PASSWORD_PEPPER", "")

			cfg, err := NewPasswordConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, cfg.BcryptCost)
		})
	}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}

	hash, err := cfg.HashPassword("gizli-sifre-123")
	require.NoError(t, err)
	assert.NotEqual(t, "gizli-sifre-123", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$10$"))

	assert.True(t, cfg.VerifyPassword("gizli-sifre-123", hash))
	assert.False(t, cfg.VerifyPassword("yanlis", hash))
	assert.False(t, cfg.VerifyPassword("gizli-sifre-123", "not-a-hash"))
}

func TestPasswordConfig_Pepper(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: 10, Pepper: "ofis-pepper"}
	plain := &PasswordConfig{BcryptCost: 10}

	hash, err := peppered.HashPassword("parola")
	require.NoError(t, err)
	assert.True(t, peppered.VerifyPassword("parola", hash))
	assert.False(t, plain.VerifyPassword("parola", hash), "hash needs the same pepper")

	rotated := &PasswordConfig{BcryptCost: 10, Pepper: "yeni-pepper"}
	assert.False(t, rotated.VerifyPassword("parola", hash))
}

func TestPasswordConfig_TooLong(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10, Pepper: "12345"}
	_, err := cfg.HashPassword(strings.Repeat("a", 70))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = cfg.HashPassword(strings.Repeat("a", 67))
	assert.NoError(t, err)
}

func TestPasswordConfig_SaltedHashesDiffer(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}
	a, err := cfg.HashPassword("ayni")
	require.NoError(t, err)
	b, err := cfg.HashPassword("ayni")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPasswordConfig_ConcurrentUse(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hash, err := cfg.HashPassword("eszamanli")
			assert.NoError(t, err)
			assert.True(t, cfg.VerifyPassword("eszamanli", hash))
		}()
	}
	wg.Wait()
}
