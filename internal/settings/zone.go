package settings

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"
)

var localtimePath = "/etc/localtime"

// DetectZone resolves the host's IANA zone name: $TZ, then the
// /etc/localtime symlink target, then time.Local, then "UTC".
func DetectZone() string {
	if tz := strings.TrimPrefix(strings.TrimSpace(os.Getenv("TZ")), ":"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			return tz
		}
	}
	if target, err := os.Readlink(localtimePath); err == nil {
		if name := zoneFromPath(target); name != "" {
			return name
		}
	}
	if name := time.Local.String(); name != "" && name != "Local" {
		return name
	}
	return "UTC"
}

// ZoneDetector pins detection to override when it names a loadable zone.
func ZoneDetector(override string) func() string {
	override = strings.TrimSpace(override)
	if override != "" {
		if _, err := time.LoadLocation(override); err == nil {
			return func() string { return override }
		}
	}
	return DetectZone
}

func zoneFromPath(target string) string {
	target = filepath.ToSlash(target)
	i := strings.LastIndex(target, "zoneinfo/")
	if i < 0 {
		return ""
	}
	name := target[i+len("zoneinfo/"):]
	if _, err := time.LoadLocation(name); err != nil {
		return ""
	}
	return name
}
