package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetShortVersion(t *testing.T) {
	originalVersion, originalCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = originalVersion, originalCommit })

	Version = "1.4.0"
	GitCommit = "0123456789abcdef"
	assert.Equal(t, "1.4.0-0123456", GetShortVersion())

	GitCommit = "abc"
	assert.Equal(t, "1.4.0", GetShortVersion())
}

func TestUserAgent(t *testing.T) {
	originalVersion, originalCommit := Version, GitCommit
	t.Cleanup(func() { Version, GitCommit = originalVersion, originalCommit })

	Version = "2.0.1"
	GitCommit = ""

	ua := UserAgent()
	assert.True(t, strings.HasPrefix(ua, "smartspace-cli/2.0.1 ("))
	assert.Contains(t, ua, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestGet(t *testing.T) {
	info := Get()
	assert.NotEmpty(t, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}
