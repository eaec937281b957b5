package registry

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/caserun/caserun/engine"
	caserunner "github.com/caserun/caserun/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRegistryFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testExecutor(t *testing.T) *caserunner.Executor {
	t.Helper()
	return caserunner.NewExecutor(engine.NewContext(t.TempDir(), nil), t.TempDir(), nil)
}

func TestRegistryLoading(t *testing.T) {
	validConfig := `
suites:
  - name: smoke
    root: /opt/tests/smoke
    programs:
      - binary: check_boot
        interface: plain
      - binary: pkg.test
        interface: gotest
        timeout: 90s
  - name: integration
    programs:
      - binary: /opt/tests/integration/api.test
        interface: gotest
        properties:
          allowed_platforms: linux
`
	configPath := writeRegistryFile(t, validConfig)

	baseConfig := Config{
		RegistryFile: configPath,
		Executor:     testExecutor(t),
	}

	t.Run("registry file loading", func(t *testing.T) {
		tests := []struct {
			name    string
			cfg     Config
			wantErr bool
		}{
			{
				name:    "valid registry",
				cfg:     baseConfig,
				wantErr: false,
			},
			{
				name: "nonexistent file",
				cfg: Config{
					RegistryFile: "nonexistent.yaml",
					Executor:     baseConfig.Executor,
				},
				wantErr: true,
			},
			{
				name: "missing file path",
				cfg: Config{
					Executor: baseConfig.Executor,
				},
				wantErr: true,
			},
			{
				name: "missing executor",
				cfg: Config{
					RegistryFile: configPath,
				},
				wantErr: true,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				reg, err := NewRegistry(tt.cfg)
				if tt.wantErr {
					assert.Error(t, err)
					return
				}
				require.NoError(t, err)
				assert.Len(t, reg.Programs(), 3)
			})
		}
	})

	t.Run("binary resolved against suite root", func(t *testing.T) {
		reg, err := NewRegistry(baseConfig)
		require.NoError(t, err)

		smoke := reg.ProgramsBySuite("smoke")
		require.Len(t, smoke, 2)
		assert.Equal(t, "/opt/tests/smoke/check_boot", smoke[0].Binary())
		assert.Equal(t, "/opt/tests/smoke", smoke[0].Root())
		assert.Equal(t, "smoke", smoke[0].TestSuiteName())
	})

	t.Run("absolute binary left alone", func(t *testing.T) {
		reg, err := NewRegistry(baseConfig)
		require.NoError(t, err)

		integration := reg.ProgramsBySuite("integration")
		require.Len(t, integration, 1)
		assert.Equal(t, "/opt/tests/integration/api.test", integration[0].Binary())
	})
}

func TestRegistryRejectsBadEntries(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{
			name: "unknown interface",
			content: `
suites:
  - name: smoke
    programs:
      - binary: /bin/x
        interface: tap
`,
			errPart: "unknown test program interface",
		},
		{
			name: "duplicate binary in suite",
			content: `
suites:
  - name: smoke
    programs:
      - binary: /bin/x
        interface: plain
      - binary: /bin/x
        interface: plain
`,
			errPart: "duplicate program",
		},
		{
			name: "suite without a name",
			content: `
suites:
  - programs:
      - binary: /bin/x
        interface: plain
`,
			errPart: "suite without a name",
		},
		{
			name: "program without a binary",
			content: `
suites:
  - name: smoke
    programs:
      - interface: plain
`,
			errPart: "without a binary",
		},
		{
			name:    "malformed yaml",
			content: "suites: [",
			errPart: "parsing registry file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(Config{
				RegistryFile: writeRegistryFile(t, tt.content),
				Executor:     testExecutor(t),
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestRegistryTimeoutPrecedence(t *testing.T) {
	content := `
suites:
  - name: smoke
    timeout: 2m
    programs:
      - binary: /bin/a
        interface: plain
      - binary: /bin/b
        interface: plain
        timeout: 10s
`
	reg, err := NewRegistry(Config{
		RegistryFile:   writeRegistryFile(t, content),
		Executor:       testExecutor(t),
		DefaultTimeout: time.Hour,
	})
	require.NoError(t, err)

	programs := reg.Programs()
	require.Len(t, programs, 2)

	casesA, err := programs[0].LoadTestCases()
	require.NoError(t, err)
	assert.Equal(t, "2m0s", casesA[0].AllProperties()["timeout"])

	casesB, err := programs[1].LoadTestCases()
	require.NoError(t, err)
	assert.Equal(t, "10s", casesB[0].AllProperties()["timeout"])
}

func TestRegistryGetConfig(t *testing.T) {
	executor := testExecutor(t)
	reg, err := NewRegistry(Config{
		RegistryFile:   writeRegistryFile(t, "suites: []"),
		Executor:       executor,
		DefaultTimeout: 42 * time.Second,
	})
	require.NoError(t, err)

	cfg := reg.GetConfig()
	assert.Equal(t, 42*time.Second, cfg.DefaultTimeout)
	assert.Same(t, executor, cfg.Executor)
}

func TestLoadRuntimeConfig(t *testing.T) {
	t.Run("empty path yields host defaults", func(t *testing.T) {
		cfg, err := LoadRuntimeConfig("")
		require.NoError(t, err)
		assert.Equal(t, runtime.GOARCH, cfg.Architecture)
		assert.Equal(t, runtime.GOOS, cfg.Platform)
	})

	t.Run("file contents win over defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "runtime.yaml")
		content := `
architecture: riscv64
platform: freebsd
test_suite: smoke
test_suites:
  smoke:
    FAST: "yes"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := LoadRuntimeConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "riscv64", cfg.Architecture)
		assert.Equal(t, "freebsd", cfg.Platform)
		assert.Equal(t, "smoke", cfg.TestSuite)
		assert.Equal(t, map[string]string{"FAST": "yes"}, cfg.SuiteVars("smoke"))
	})

	t.Run("missing fields fall back to host", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "runtime.yaml")
		require.NoError(t, os.WriteFile(path, []byte("test_suite: smoke\n"), 0o644))

		cfg, err := LoadRuntimeConfig(path)
		require.NoError(t, err)
		assert.Equal(t, runtime.GOARCH, cfg.Architecture)
		assert.Equal(t, runtime.GOOS, cfg.Platform)
	})

	t.Run("unreadable file is an error", func(t *testing.T) {
		_, err := LoadRuntimeConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})
}
