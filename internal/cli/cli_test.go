package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/kennzeichen/internal/config"
	"github.com/pfrederiksen/kennzeichen/internal/scraper"
	"github.com/pfrederiksen/kennzeichen/internal/storage"
)

const twoRowPage = `<html><body>
<div class="b-table"><table><tbody>
<tr><td>IZ</td><td>Leipzig</td><td></td><td>Sachsen-Anhalt</td></tr>
<tr><td>X</td><td>Any</td><td></td><td>Any</td></tr>
</tbody></table></div>
</body></html>`

const twoRowJSON = `[
    {
        "Kuerzel": "IZ",
        "Ort": "Leipzig",
        "Bundesland": "Sachsen",
        "Speziell": null
    },
    {
        "Kuerzel": "X",
        "Ort": "Any",
        "Bundesland": "Any",
        "Speziell": "International Headquarters of NATO based in Germany"
    }
]
`

func newPageServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func executeRoot(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRootCmd_EndToEnd(t *testing.T) {
	server := newPageServer(t, http.StatusOK, twoRowPage)
	dataDir := filepath.Join(t.TempDir(), "data")

	stdout, stderr, err := executeRoot(t, "--url", server.URL, "--data-dir", dataDir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dataDir, "raw.json"))
	require.NoError(t, err)
	assert.Equal(t, twoRowJSON, string(data))

	assert.Empty(t, stdout, "no summary unless asked for")
	assert.Contains(t, stderr, "Loading registration codes")
	assert.Contains(t, stderr, "Writing raw data")
	assert.Contains(t, stderr, "2 registration codes loaded")
}

func TestRootCmd_Summary(t *testing.T) {
	server := newPageServer(t, http.StatusOK, twoRowPage)
	dataDir := filepath.Join(t.TempDir(), "data")

	stdout, _, err := executeRoot(t, "--url", server.URL, "--data-dir", dataDir, "--summary")
	require.NoError(t, err)

	assert.Contains(t, stdout, "2 registration codes (1 geographic, 1 special)")
	assert.Contains(t, stdout, "Sachsen")
}

func TestRootCmd_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "non-success status",
			status: http.StatusInternalServerError,
			body:   twoRowPage,
			check: func(t *testing.T, err error) {
				var reqErr *scraper.RequestError
				assert.True(t, errors.As(err, &reqErr), "got %v", err)
			},
		},
		{
			name:   "missing table",
			status: http.StatusOK,
			body:   "<html><body><p>Keine Daten</p></body></html>",
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, scraper.ErrTableNotFound), "got %v", err)
			},
		},
		{
			name:   "malformed row",
			status: http.StatusOK,
			body:   `<div class="b-table"><table><tbody><tr><td>B</td></tr></tbody></table></div>`,
			check: func(t *testing.T, err error) {
				var rowErr *scraper.RowError
				assert.True(t, errors.As(err, &rowErr), "got %v", err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newPageServer(t, tt.status, tt.body)
			dataDir := filepath.Join(t.TempDir(), "data")

			_, stderr, err := executeRoot(t, "--url", server.URL, "--data-dir", dataDir)

			require.Error(t, err)
			tt.check(t, err)
			assert.NotContains(t, stderr, "Writing raw data")

			_, statErr := os.Stat(dataDir)
			assert.True(t, os.IsNotExist(statErr), "no output directory should be created")
		})
	}
}

func TestRootCmd_FilesystemError(t *testing.T) {
	server := newPageServer(t, http.StatusOK, twoRowPage)
	dataDir := filepath.Join(t.TempDir(), "missing", "data")

	_, _, err := executeRoot(t, "--url", server.URL, "--data-dir", dataDir)

	var fsErr *storage.FilesystemError
	require.True(t, errors.As(err, &fsErr), "got %v", err)
	assert.Equal(t, "mkdir", fsErr.Op)
}

func TestRootCmd_InvalidFlags(t *testing.T) {
	_, _, err := executeRoot(t, "--url", "not a url")
	assert.True(t, errors.Is(err, config.ErrInvalidURL), "got %v", err)

	_, _, err = executeRoot(t, "--format", "xml")
	assert.True(t, errors.Is(err, config.ErrInvalidFormat), "got %v", err)

	_, _, err = executeRoot(t, "extra-arg")
	assert.Error(t, err)
}

func TestRootCmd_ConfigFile(t *testing.T) {
	server := newPageServer(t, http.StatusOK, twoRowPage)
	root := t.TempDir()
	dataDir := filepath.Join(root, "out")

	configPath := filepath.Join(root, "kennzeichen.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"source:\n  url: \""+server.URL+"\"\n"+
			"output:\n  dir: \""+dataDir+"\"\n  file: \"codes.json\"\n  summary: true\n  summary_format: \"json\"\n",
	), 0644))

	stdout, _, err := executeRoot(t, "--config", configPath)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dataDir, "codes.json"))
	assert.NoError(t, err)
	assert.Contains(t, stdout, `"total": 2`)
}

func TestShowCmd(t *testing.T) {
	server := newPageServer(t, http.StatusOK, twoRowPage)
	dataDir := filepath.Join(t.TempDir(), "data")

	_, _, err := executeRoot(t, "--url", server.URL, "--data-dir", dataDir)
	require.NoError(t, err)

	stdout, _, err := executeRoot(t, "show", "--data-dir", dataDir, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"geographic": 1`)
	assert.Contains(t, stdout, `"special": 1`)

	_, _, err = executeRoot(t, "show", "--data-dir", filepath.Join(t.TempDir(), "empty"))
	var fsErr *storage.FilesystemError
	assert.True(t, errors.As(err, &fsErr), "got %v", err)
}

func TestRun_LogFile(t *testing.T) {
	server := newPageServer(t, http.StatusOK, twoRowPage)
	root := t.TempDir()

	_, _, err := executeRoot(t,
		"--url", server.URL,
		"--data-dir", filepath.Join(root, "data"),
		"--verbose",
		"--log-file", filepath.Join(root, "run-%Y%m%d.log"))
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(root, "run-*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "Fix-up rule applied")
	assert.Contains(t, string(data), "Raw data written")
}
