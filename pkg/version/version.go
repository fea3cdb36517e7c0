package version

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Set at build time through ldflags
var (
	GitTag    string
	GitBranch string
)

// Length of an abbreviated commit hash
const shortHashLen = 12

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Version returns the release tag, falling back to the branch, then to
// the abbreviated commit hash, then to "dev".
func Version() string {
	switch {
	case GitTag != "":
		return GitTag
	case GitBranch != "":
		return GitBranch
	}
	if hash := revision(); hash != "" {
		return shortHash(hash)
	}
	return "dev"
}

// JSON returns build metadata for the named executable as indented JSON.
func JSON(execName string) []byte {
	metadata := map[string]string{
		"name":     execName,
		"version":  Version(),
		"compiler": runtime.Version(),
	}
	if GitTag != "" {
		metadata["tag"] = GitTag
	}
	if GitBranch != "" {
		metadata["branch"] = GitBranch
	}

	// Fill in what the toolchain stamped into the binary
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Path != "" {
			metadata["source"] = info.Main.Path
		}
		var goos, goarch string
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if setting.Value != "" {
					metadata["hash"] = setting.Value
				}
			case "vcs.time":
				if setting.Value != "" {
					metadata["build_time"] = setting.Value
				}
			case "vcs.modified":
				if setting.Value == "true" {
					metadata["modified"] = setting.Value
				}
			case "GOOS":
				goos = setting.Value
			case "GOARCH":
				goarch = setting.Value
			}
		}
		if goos != "" && goarch != "" {
			metadata["platform"] = goos + "/" + goarch
		}
	}

	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		panic(err)
	}
	return data
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// shortHash abbreviates a commit hash. Hashes at or under the
// abbreviated length are returned unchanged.
func shortHash(hash string) string {
	if len(hash) > shortHashLen {
		return hash[:shortHashLen]
	}
	return hash
}

// revision returns the vcs.revision build setting, or the empty string
// when the binary was built outside a repository.
func revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			return setting.Value
		}
	}
	return ""
}
