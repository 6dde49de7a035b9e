package version

import (
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/pterm/pterm"
	"github.com/tidwall/gjson"
)

// DevVersion é a versão de builds locais sem tag.
const DevVersion = "0.0.0-dev"

// Preenchidos por ldflags; o que faltar vem do build info.
var (
	Version   = DevVersion
	Commit    = ""
	BuildTime = ""
)

func init() {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi == nil {
		return
	}
	settings := make(map[string]string, len(bi.Settings))
	for _, s := range bi.Settings {
		settings[s.Key] = s.Value
	}
	applyBuildInfo(bi.Main.Version, settings)
}

// applyBuildInfo completa Version/Commit/BuildTime sem sobrescrever valores
// vindos de ldflags. mainVersion é a versão do módulo ("(devel)" em builds
// locais, "v1.2.3" via go install).
func applyBuildInfo(mainVersion string, settings map[string]string) {
	if Commit == "" && len(settings["vcs.revision"]) >= 7 {
		Commit = settings["vcs.revision"][:7]
	}
	if BuildTime == "" {
		if ts, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
			BuildTime = ts.UTC().Format("2006-01-02T15:04:05Z")
		}
	}
	if Version != "" && Version != DevVersion {
		return
	}

	tag := settings["vcs.tag"]
	if tag == "" && mainVersion != "" && mainVersion != "(devel)" {
		tag = mainVersion
	}
	if tag == "" {
		return
	}
	Version = strings.TrimPrefix(tag, "v")
	if strings.EqualFold(settings["vcs.modified"], "true") {
		Version += "-dirty"
	}
}

// ReleasesURL aponta para a última release publicada.
const ReleasesURL = "https://api.github.com/repos/diillson/aws-cost-optimizer-go/releases/latest"

// CheckLatestVersion avisa quando há uma release mais nova que a atual.
// Falhas de rede são ignoradas.
func CheckLatestVersion(currentVersion string) {
	if currentVersion == DevVersion {
		return
	}
	latest, err := fetchLatestVersion(ReleasesURL)
	if err != nil || !IsNewer(latest, currentVersion) {
		return
	}
	pterm.Warning.Println(fmt.Sprintf("A new version of AWS Cost Optimizer is available: %s", latest))
	pterm.Info.Println("Please update using: go install github.com/diillson/aws-cost-optimizer-go/cmd/aws-optimizer@latest")
}

func fetchLatestVersion(url string) (string, error) {
	client := cleanhttp.DefaultClient()
	client.Timeout = 3 * time.Second

	resp, err := client.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(gjson.GetBytes(body, "tag_name").String(), "v"), nil
}

// IsNewer compara versões x.y.z numericamente. Versões dev nunca são
// consideradas desatualizadas.
func IsNewer(latest, current string) bool {
	if latest == "" || current == DevVersion {
		return false
	}
	l, c := versionParts(latest), versionParts(current)
	for i := 0; i < 3; i++ {
		if l[i] != c[i] {
			return l[i] > c[i]
		}
	}
	return false
}

func versionParts(v string) [3]int {
	var parts [3]int
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	for i, p := range strings.SplitN(v, ".", 3) {
		n, err := strconv.Atoi(p)
		if err != nil {
			break
		}
		parts[i] = n
	}
	return parts
}

// FormatVersion retorna a versão com commit e data de build, por exemplo
// "1.2.3 (commit: abc1234, built at: 2026-10-15T09:30:00Z)".
func FormatVersion() string {
	ver := Version
	if ver == "" {
		ver = DevVersion
	}
	switch {
	case Commit == "" && BuildTime == "":
		return ver + " (development)"
	case BuildTime == "":
		return fmt.Sprintf("%s (commit: %s)", ver, Commit)
	case Commit == "":
		return fmt.Sprintf("%s (built at: %s)", ver, BuildTime)
	}
	return fmt.Sprintf("%s (commit: %s, built at: %s)", ver, Commit, BuildTime)
}
