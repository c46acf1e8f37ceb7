// Package config holds the full bootstrap configuration: where the production
// checkout lives, which packages get installed, which path fragments get
// rewritten, and where extracted payloads land.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// 🔄 Rule is one literal path substitution applied during localization.
// Rules are applied in declared order; later rules see the output of
// earlier rules within the same file.
type Rule struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// 🔑 TransferArgs describes the remote host holding credential and staging
// files, and the local directories they sync into.
type TransferArgs struct {
	Host             string `json:"host" yaml:"host"`
	User             string `json:"user" yaml:"user"`
	RemoteKeyDir     string `json:"remote_key_dir" yaml:"remote_key_dir"`
	RemoteStagingDir string `json:"remote_staging_dir" yaml:"remote_staging_dir"`
	LocalKeyDir      string `json:"local_key_dir" yaml:"local_key_dir"`
	LocalStagingDir  string `json:"local_staging_dir" yaml:"local_staging_dir"`
}

// 📦 RepoArgs describes the production repository checkout.
type RepoArgs struct {
	URL      string `json:"url" yaml:"url"`
	SSHURL   string `json:"ssh_url" yaml:"ssh_url"`
	Checkout string `json:"checkout" yaml:"checkout"`
	Branch   string `json:"branch" yaml:"branch"`
}

// 🐳 DockerArgs pins the container image the bootstrap pulls.
type DockerArgs struct {
	Image string `json:"image" yaml:"image"`
}

// 🐍 CondaArgs describes the isolated data-science runtime.
type CondaArgs struct {
	EnvName          string   `json:"env_name" yaml:"env_name"`
	PythonVersion    string   `json:"python_version" yaml:"python_version"`
	Requirements     []string `json:"requirements" yaml:"requirements"`
	RequirementsFile string   `json:"requirements_file" yaml:"requirements_file"`
	ActivateHook     string   `json:"activate_hook" yaml:"activate_hook"`
	DeactivateHook   string   `json:"deactivate_hook" yaml:"deactivate_hook"`
	RProfile         string   `json:"rprofile" yaml:"rprofile"`
}

// 🔄 LocalizeArgs configures the path localization pass over the checkout.
type LocalizeArgs struct {
	Root     string   `json:"root" yaml:"root"`
	Suffixes []string `json:"suffixes" yaml:"suffixes"` // doublestar globs matched against base names
	Rules    []Rule   `json:"rules" yaml:"rules"`
}

// 📤 ExtractArgs configures payload extraction from the localized checkout.
type ExtractArgs struct {
	SourceDir      string   `json:"source_dir" yaml:"source_dir"`
	PythonDest     string   `json:"python_dest" yaml:"python_dest"`
	RDest          string   `json:"r_dest" yaml:"r_dest"`
	FunctionsDir   string   `json:"functions_dir" yaml:"functions_dir"`
	FunctionsDests []string `json:"functions_dests" yaml:"functions_dests"`
	IgnoreGlobs    []string `json:"ignore_globs,omitempty" yaml:"ignore_globs,omitempty"`
}

// 📚 Config is the complete bootstrap configuration.
type Config struct {
	Home     string       `json:"home,omitempty" yaml:"home,omitempty"`
	Transfer TransferArgs `json:"transfer" yaml:"transfer"`
	Repo     RepoArgs     `json:"repo" yaml:"repo"`
	Docker   DockerArgs   `json:"docker" yaml:"docker"`
	Conda    CondaArgs    `json:"conda" yaml:"conda"`
	Localize LocalizeArgs `json:"localize" yaml:"localize"`
	Extract  ExtractArgs  `json:"extract" yaml:"extract"`
}

// 🏭 Default returns the hard-coded configuration the bare binary runs with.
// Every path is anchored under home so tests can substitute a temp dir.
func Default(home string) *Config {
	checkout := filepath.Join(home, "production")
	pyDest := filepath.Join(home, "production_python_scripts")
	rDest := filepath.Join(home, "production_r_scripts")
	return &Config{
		Home: home,
		Transfer: TransferArgs{
			Host:             "bastion.internal",
			User:             "ubuntu",
			RemoteKeyDir:     "/home/ubuntu/keys",
			RemoteStagingDir: "/home/ubuntu/staging",
			LocalKeyDir:      filepath.Join(home, "keys"),
			LocalStagingDir:  filepath.Join(home, "staging"),
		},
		Repo: RepoArgs{
			URL:      "https://github.com/ChrisPachulski/production.git",
			SSHURL:   "git@github.com:ChrisPachulski/production.git",
			Checkout: checkout,
			Branch:   "main",
		},
		Docker: DockerArgs{
			Image: "mysql:8.0.33",
		},
		Conda: CondaArgs{
			EnvName:       "datasci",
			PythonVersion: "3.10",
			Requirements: []string{
				"pandas==1.5.3",
				"numpy==1.24.2",
				"sqlalchemy==1.4.46",
				"pymysql==1.0.2",
				"gspread==5.7.2",
				"boto3==1.26.84",
				"requests==2.28.2",
			},
			RequirementsFile: filepath.Join(home, "requirements.txt"),
			ActivateHook:     filepath.Join(home, ".datasci_activate.sh"),
			DeactivateHook:   filepath.Join(home, ".datasci_deactivate.sh"),
			RProfile:         filepath.Join(home, ".Rprofile"),
		},
		Localize: LocalizeArgs{
			Root:     checkout,
			Suffixes: []string{"*.sh", "*.py"},
			Rules: []Rule{
				{From: "/home/ubuntu/keys", To: filepath.Join(home, "keys")},
				{From: "/home/ubuntu/.config", To: filepath.Join(home, "keys")},
				{From: "/home/ubuntu/tmp", To: filepath.Join(home, "Downloads")},
			},
		},
		Extract: ExtractArgs{
			SourceDir:    filepath.Join(checkout, "scripts"),
			PythonDest:   pyDest,
			RDest:        rDest,
			FunctionsDir: filepath.Join(checkout, "functions"),
			FunctionsDests: []string{
				filepath.Join(checkout, "scripts", "functions"),
				filepath.Join(home, "functions"),
				filepath.Join(pyDest, "functions"),
				filepath.Join(rDest, "functions"),
			},
		},
	}
}

// 🏠 HomeDir resolves the operator's home directory, preferring the
// configured override.
func (cfg *Config) HomeDir() (string, error) {
	if cfg.Home != "" {
		return cfg.Home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Errorf("resolving home directory: %w", err)
	}
	return home, nil
}

// 🔍 Validate checks the configuration is complete enough to run.
func (cfg *Config) Validate() error {
	if cfg.Repo.URL == "" {
		return errors.Errorf("repo.url is required")
	}
	if cfg.Repo.Checkout == "" {
		return errors.Errorf("repo.checkout is required")
	}
	if cfg.Localize.Root == "" {
		return errors.Errorf("localize.root is required")
	}
	if len(cfg.Localize.Suffixes) == 0 {
		return errors.Errorf("localize.suffixes is required")
	}
	for i, r := range cfg.Localize.Rules {
		if r.From == "" {
			return errors.Errorf("localize.rules[%d]: from is required", i)
		}
	}
	if cfg.Extract.SourceDir == "" {
		return errors.Errorf("extract.source_dir is required")
	}
	if cfg.Extract.PythonDest == "" || cfg.Extract.RDest == "" {
		return errors.Errorf("extract destinations are required")
	}
	if cfg.Conda.EnvName == "" {
		return errors.Errorf("conda.env_name is required")
	}

	// Clean up paths
	cfg.Repo.Checkout = filepath.Clean(cfg.Repo.Checkout)
	cfg.Localize.Root = filepath.Clean(cfg.Localize.Root)
	cfg.Extract.SourceDir = filepath.Clean(cfg.Extract.SourceDir)

	// Set defaults
	if cfg.Repo.Branch == "" {
		cfg.Repo.Branch = "main"
	}

	return nil
}

// 📝 String returns a short operator-facing summary of the config.
func (cfg *Config) String() string {
	return fmt.Sprintf("%s@%s -> %s (env %s)", cfg.Repo.URL, cfg.Repo.Branch, cfg.Repo.Checkout, cfg.Conda.EnvName)
}
