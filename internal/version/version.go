// Package version reports build information for the relay.
package version

import (
	"runtime"
	"runtime/debug"
	"strconv"
)

// These are intended to be populated at build time via -ldflags.
// They still have sensible fallbacks (debug.ReadBuildInfo) if unset.
var (
	BuildVersion = "dev"
	GitSHA       = ""
	BuildTime    = ""
)

const sdkModule = "github.com/sashabaranov/go-openai"

type Info struct {
	Service     string `json:"service"`
	Version     string `json:"version"`
	GitSHA      string `json:"git_sha,omitempty"`
	BuildTime   string `json:"build_time,omitempty"`
	VCSModified *bool  `json:"vcs_modified,omitempty"`
	GoVersion   string `json:"go_version"`
	OpenAISDK   string `json:"openai_sdk_version"`
	GOOS        string `json:"go_os"`
	GOARCH      string `json:"go_arch"`
}

func Get(service string) Info {
	info := Info{
		Service:   service,
		Version:   BuildVersion,
		GitSHA:    GitSHA,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		OpenAISDK: "unknown",
		GOOS:      runtime.GOOS,
		GOARCH:    runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, dep := range bi.Deps {
		if dep.Path == sdkModule {
			info.OpenAISDK = dep.Version
		}
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitSHA == "" {
				info.GitSHA = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			if info.VCSModified == nil {
				if b, err := strconv.ParseBool(s.Value); err == nil {
					info.VCSModified = &b
				}
			}
		}
	}
	return info
}
