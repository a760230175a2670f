package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"
)

// Sobrescritos por ldflags (-X) ou pelas informações de build.
var (
	Version   = "0.0.0-dev"
	Commit    = ""
	BuildTime = ""
)

// ReleaseURL is queried by LatestRelease.
var ReleaseURL = "https://api.github.com/repos/diillson/campaign-metrics-dashboard-go/releases/latest"

func init() {
	fromBuildInfo()
}

// fromBuildInfo fills Commit and BuildTime from the embedded VCS stamp.
// Values set through ldflags are left untouched.
func fromBuildInfo() {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi == nil {
		return
	}

	settings := make(map[string]string, len(bi.Settings))
	for _, s := range bi.Settings {
		settings[s.Key] = s.Value
	}

	if Commit == "" && len(settings["vcs.revision"]) >= 7 {
		Commit = settings["vcs.revision"][:7]
	}
	if BuildTime == "" {
		if ts, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
			BuildTime = ts.UTC().Format("2006-01-02T15:04:05Z")
		}
	}
	if Version == "0.0.0-dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		Version = strings.TrimPrefix(bi.Main.Version, "v")
		if settings["vcs.modified"] == "true" {
			Version += "-dirty"
		}
	}
}

// FormatVersion retorna a versão com commit e data de build.
// Ex.: "1.2.3 (commit: abc1234, built at: 2025-10-23T10:20:30Z)"
func FormatVersion() string {
	ver := Version
	if ver == "" {
		ver = "0.0.0-dev"
	}
	switch {
	case Commit == "" && BuildTime == "":
		return fmt.Sprintf("%s (development)", ver)
	case Commit == "":
		return fmt.Sprintf("%s (built at: %s)", ver, BuildTime)
	case BuildTime == "":
		return fmt.Sprintf("%s (commit: %s)", ver, Commit)
	}
	return fmt.Sprintf("%s (commit: %s, built at: %s)", ver, Commit, BuildTime)
}

// LatestRelease returns the newest published version when it is newer than current.
// Dev builds and any network failure report no update.
func LatestRelease(ctx context.Context, current string) (string, bool) {
	if strings.HasSuffix(current, "-dev") {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ReleaseURL, nil)
	if err != nil {
		return "", false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", false
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	if Compare(latest, current) > 0 {
		return latest, true
	}
	return "", false
}

// Compare orders dotted numeric versions, ignoring any -suffix.
// "1.10.0" is newer than "1.9.3".
func Compare(a, b string) int {
	pa, pb := parts(a), parts(b)
	for i := 0; i < len(pa) || i < len(pb); i++ {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

func parts(v string) []int {
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	var out []int
	for _, p := range strings.Split(v, ".") {
		n, err := strconv.Atoi(p)
		if err != nil {
			n = 0
		}
		out = append(out, n)
	}
	return out
}
