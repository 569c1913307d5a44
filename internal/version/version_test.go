package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get("codecounselor")

	assert.Equal(t, "codecounselor", info.Service)
	assert.Equal(t, BuildVersion, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS, info.GOOS)
	assert.NotEmpty(t, info.OpenAISDK)
}
