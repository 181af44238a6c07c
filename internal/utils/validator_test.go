// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAccountAddress(t *testing.T) {
	assert.True(t, IsAccountAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
	assert.True(t, IsAccountAddress("0xAbCdEf0123456789abcdef0123456789ABCDEF01"))

	assert.False(t, IsAccountAddress(""))
	assert.False(t, IsAccountAddress("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
	assert.False(t, IsAccountAddress("0xaaaa"))
	assert.False(t, IsAccountAddress("0xZZaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
}

func TestIsContentHash(t *testing.T) {
	assert.True(t, IsContentHash("0x1111111111111111111111111111111111111111111111111111111111111111"))

	assert.False(t, IsContentHash("0x1111"))
	assert.False(t, IsContentHash("1111111111111111111111111111111111111111111111111111111111111111"))
}

func TestGenerateAddress(t *testing.T) {
	a, err := GenerateAddress()
	assert.NoError(t, err)
	assert.True(t, IsAccountAddress(a))

	b, err := GenerateAddress()
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}
