package version

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNewer(t *testing.T) {
	tests := []struct {
		latest, current string
		want            bool
	}{
		{"1.2.0", "1.1.9", true},
		{"1.10.0", "1.9.0", true},
		{"1.2.0", "1.2.0", false},
		{"1.2.0", "1.3.0", false},
		{"2.0.0", "1.2.0-dirty", true},
		{"2.0.0", "0.0.0-dev", false},
		{"", "1.0.0", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsNewer(tt.latest, tt.current), "%s vs %s", tt.latest, tt.current)
	}
}

func TestFetchLatestVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"v1.4.2","name":"AWS Cost Optimizer 1.4.2"}`))
	}))
	defer srv.Close()

	v, err := fetchLatestVersion(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "1.4.2", v)
}

func TestFetchLatestVersionStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := fetchLatestVersion(srv.URL)
	assert.Error(t, err)
}

func TestFormatVersion(t *testing.T) {
	oldV, oldC, oldB := Version, Commit, BuildTime
	defer func() { Version, Commit, BuildTime = oldV, oldC, oldB }()

	Version, Commit, BuildTime = "1.0.0", "", ""
	assert.Equal(t, "1.0.0 (development)", FormatVersion())

	Commit = "abc1234"
	assert.Equal(t, "1.0.0 (commit: abc1234)", FormatVersion())

	BuildTime = "2026-10-15T09:30:00Z"
	assert.Equal(t, "1.0.0 (commit: abc1234, built at: 2026-10-15T09:30:00Z)", FormatVersion())
}

func TestApplyBuildInfo(t *testing.T) {
	oldV, oldC, oldB := Version, Commit, BuildTime
	defer func() { Version, Commit, BuildTime = oldV, oldC, oldB }()

	tests := []struct {
		name        string
		ldVersion   string
		mainVersion string
		settings    map[string]string
		wantVersion string
		wantCommit  string
		wantBuilt   string
	}{
		{
			name:        "local build keeps dev version",
			ldVersion:   DevVersion,
			mainVersion: "(devel)",
			settings:    map[string]string{"vcs.revision": "abcdef0123456", "vcs.time": "2026-10-15T09:30:00+02:00"},
			wantVersion: DevVersion,
			wantCommit:  "abcdef0",
			wantBuilt:   "2026-10-15T07:30:00Z",
		},
		{
			name:        "go install uses module version",
			ldVersion:   DevVersion,
			mainVersion: "v1.3.0",
			wantVersion: "1.3.0",
		},
		{
			name:        "modified tree is dirty",
			ldVersion:   DevVersion,
			settings:    map[string]string{"vcs.tag": "v2.0.1", "vcs.modified": "true"},
			wantVersion: "2.0.1-dirty",
		},
		{
			name:        "ldflags win",
			ldVersion:   "1.0.0",
			mainVersion: "v9.9.9",
			wantVersion: "1.0.0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit, BuildTime = tt.ldVersion, "", ""
			applyBuildInfo(tt.mainVersion, tt.settings)
			assert.Equal(t, tt.wantVersion, Version)
			assert.Equal(t, tt.wantCommit, Commit)
			assert.Equal(t, tt.wantBuilt, BuildTime)
		})
	}
}
