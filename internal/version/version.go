// Package version holds the release version of the server binary.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is the service current released version.
var Version = "0.2.1"

// DevVersion is the service current development version.
var DevVersion = "0.2.1"

func GetCurrentVersion(mode string) string {
	if mode == "dev" || mode == "demo" {
		return DevVersion
	}
	return Version
}

func GetMinorVersion(version string) string {
	versionList := strings.Split(version, ".")
	if len(versionList) < 3 {
		return ""
	}
	return versionList[0] + "." + versionList[1]
}

// IsVersionGreaterOrEqualThan returns true if version is greater than or equal to target.
func IsVersionGreaterOrEqualThan(version, target string) bool {
	return !IsVersionGreaterThan(target, version)
}

// IsVersionGreaterThan returns true if version is greater than target.
func IsVersionGreaterThan(version, target string) bool {
	vs := strings.Split(version, ".")
	ts := strings.Split(target, ".")
	for i := 0; i < len(vs) && i < len(ts); i++ {
		vi, _ := strconv.Atoi(vs[i])
		ti, _ := strconv.Atoi(ts[i])
		if vi != ti {
			return vi > ti
		}
	}
	return len(vs) > len(ts)
}

func String(mode string) string {
	return fmt.Sprintf("duetcast %s", GetCurrentVersion(mode))
}
