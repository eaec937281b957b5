// Package registry loads the on-disk description of test suites and turns
// it into fully constructed engine.TestProgram values. It is the external
// collaborator that feeds the execution engine; the engine itself never
// reads configuration files.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/caserun/caserun/engine"
	caserunner "github.com/caserun/caserun/runner"
	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"
)

// Program interface kinds understood by the registry.
const (
	InterfacePlain  = "plain"
	InterfaceGoTest = "gotest"
)

// ProgramConfig describes one test program entry in the registry file.
type ProgramConfig struct {
	Binary     string            `yaml:"binary"`
	Interface  string            `yaml:"interface"`
	Timeout    *time.Duration    `yaml:"timeout,omitempty"`
	Properties map[string]string `yaml:"properties,omitempty"`
}

// SuiteConfig describes one test suite and the programs it contains.
type SuiteConfig struct {
	Name     string          `yaml:"name"`
	Root     string          `yaml:"root,omitempty"`
	Timeout  *time.Duration  `yaml:"timeout,omitempty"`
	Programs []ProgramConfig `yaml:"programs"`
}

// registryFile is the top-level shape of the registry YAML document.
type registryFile struct {
	Suites []SuiteConfig `yaml:"suites"`
}

// Config contains registry configuration.
type Config struct {
	Log            log.Logger
	RegistryFile   string
	DefaultTimeout time.Duration
	Executor       *caserunner.Executor
}

// Registry holds the test programs discovered from a registry file.
type Registry struct {
	config   Config
	programs []engine.TestProgram
	mu       sync.RWMutex
}

// NewRegistry loads the registry file and constructs every test program it
// declares. Unknown interface kinds, duplicate binaries and unreadable
// files are errors.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.RegistryFile == "" {
		return nil, fmt.Errorf("registry file is required")
	}
	if cfg.Executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	r := &Registry{config: cfg}
	if err := r.loadPrograms(cfg.RegistryFile); err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	cfg.Log.Debug("Registry loaded", "len(programs)", len(r.programs))
	return r, nil
}

func (r *Registry) loadPrograms(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading registry file: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing registry file: %w", err)
	}

	seen := make(map[string]bool)
	var programs []engine.TestProgram
	for _, suite := range file.Suites {
		if suite.Name == "" {
			return fmt.Errorf("suite without a name")
		}
		for _, pc := range suite.Programs {
			program, err := r.buildProgram(suite, pc)
			if err != nil {
				return err
			}
			key := suite.Name + "/" + program.Binary()
			if seen[key] {
				return fmt.Errorf("duplicate program %s in suite %s", program.Binary(), suite.Name)
			}
			seen[key] = true
			programs = append(programs, program)
		}
	}

	r.programs = programs
	return nil
}

func (r *Registry) buildProgram(suite SuiteConfig, pc ProgramConfig) (engine.TestProgram, error) {
	if pc.Binary == "" {
		return nil, fmt.Errorf("program without a binary in suite %s", suite.Name)
	}

	binary := pc.Binary
	if !filepath.IsAbs(binary) && suite.Root != "" {
		binary = filepath.Join(suite.Root, binary)
	}

	timeout := r.config.DefaultTimeout
	if suite.Timeout != nil {
		timeout = *suite.Timeout
	}
	if pc.Timeout != nil {
		timeout = *pc.Timeout
	}

	opts := caserunner.ProgramOptions{
		Timeout:    timeout,
		Properties: pc.Properties,
	}

	switch pc.Interface {
	case InterfacePlain, "":
		return caserunner.NewPlainProgram(binary, suite.Root, suite.Name, r.config.Executor, opts), nil
	case InterfaceGoTest:
		return caserunner.NewGoTestProgram(binary, suite.Root, suite.Name, r.config.Executor, opts), nil
	default:
		return nil, fmt.Errorf("unknown test program interface %q for %s", pc.Interface, pc.Binary)
	}
}

// Programs returns all registered test programs.
func (r *Registry) Programs() []engine.TestProgram {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.programs
}

// ProgramsBySuite returns the test programs belonging to one suite.
func (r *Registry) ProgramsBySuite(suiteName string) []engine.TestProgram {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var programs []engine.TestProgram
	for _, program := range r.programs {
		if program.TestSuiteName() == suiteName {
			programs = append(programs, program)
		}
	}
	return programs
}

// GetConfig returns the registry configuration.
func (r *Registry) GetConfig() Config {
	return r.config
}

// LoadRuntimeConfig reads the engine run-time configuration from a YAML
// file. An empty path yields a default config for the host architecture
// and platform; a file that omits either field gets the same defaults.
func LoadRuntimeConfig(path string) (*engine.Config, error) {
	cfg := &engine.Config{
		Architecture: runtime.GOARCH,
		Platform:     runtime.GOOS,
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading runtime config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing runtime config file: %w", err)
	}
	if cfg.Architecture == "" {
		cfg.Architecture = runtime.GOARCH
	}
	if cfg.Platform == "" {
		cfg.Platform = runtime.GOOS
	}
	return cfg, nil
}
