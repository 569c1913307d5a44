package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvWithDefault(t *testing.T) {
	t.Setenv("COUNSELOR_TEST_VALUE", "set")
	assert.Equal(t, "set", GetEnvWithDefault("COUNSELOR_TEST_VALUE", "default"))
	assert.Equal(t, "default", GetEnvWithDefault("COUNSELOR_TEST_UNSET", "default"))
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{name: "unset", value: "", want: 30},
		{name: "number", value: "12", want: 12},
		{name: "padded", value: " 7 ", want: 7},
		{name: "zero", value: "0", want: 0},
		{name: "garbage", value: "lots", want: 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("COUNSELOR_TEST_INT", tt.value)
			assert.Equal(t, tt.want, GetEnvInt("COUNSELOR_TEST_INT", 30))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "https://b"}, SplitList(" http://a, ,https://b ,"))
	assert.Empty(t, SplitList(" , "))
}

func TestKeyPrefix(t *testing.T) {
	assert.Nil(t, KeyPrefix("", 10))
	assert.Equal(t, "0123456789...", *KeyPrefix("0123456789abcdef", 10))
	assert.Equal(t, "short...", *KeyPrefix("short", 10))
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "***", MaskToken("tiny"))
	assert.Equal(t, "sk-a...wxyz", MaskToken("sk-abcdefghijklmnopqrstuvwxyz"))
}
