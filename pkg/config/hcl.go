package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

// loadHCL decodes HCL data over cfg. The schema struct mirrors the model so
// the model itself stays free of hcl tags.
func loadHCL(data []byte, filename string, cfg *Config) error {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// The rules list decodes as an attribute expression, which goes through
	// gocty and needs cty tags rather than hcl ones.
	type hclRule struct {
		From string `cty:"from"`
		To   string `cty:"to"`
	}
	type hclConfig struct {
		Home     string `hcl:"home,optional"`
		Transfer *struct {
			Host             string `hcl:"host,optional"`
			User             string `hcl:"user,optional"`
			RemoteKeyDir     string `hcl:"remote_key_dir,optional"`
			RemoteStagingDir string `hcl:"remote_staging_dir,optional"`
			LocalKeyDir      string `hcl:"local_key_dir,optional"`
			LocalStagingDir  string `hcl:"local_staging_dir,optional"`
		} `hcl:"transfer,block"`
		Repo *struct {
			URL      string `hcl:"url,optional"`
			SSHURL   string `hcl:"ssh_url,optional"`
			Checkout string `hcl:"checkout,optional"`
			Branch   string `hcl:"branch,optional"`
		} `hcl:"repo,block"`
		Docker *struct {
			Image string `hcl:"image,optional"`
		} `hcl:"docker,block"`
		Conda *struct {
			EnvName          string   `hcl:"env_name,optional"`
			PythonVersion    string   `hcl:"python_version,optional"`
			Requirements     []string `hcl:"requirements,optional"`
			RequirementsFile string   `hcl:"requirements_file,optional"`
			ActivateHook     string   `hcl:"activate_hook,optional"`
			DeactivateHook   string   `hcl:"deactivate_hook,optional"`
			RProfile         string   `hcl:"rprofile,optional"`
		} `hcl:"conda,block"`
		Localize *struct {
			Root     string    `hcl:"root,optional"`
			Suffixes []string  `hcl:"suffixes,optional"`
			Rules    []hclRule `hcl:"rules,optional"`
		} `hcl:"localize,block"`
		Extract *struct {
			SourceDir      string   `hcl:"source_dir,optional"`
			PythonDest     string   `hcl:"python_dest,optional"`
			RDest          string   `hcl:"r_dest,optional"`
			FunctionsDir   string   `hcl:"functions_dir,optional"`
			FunctionsDests []string `hcl:"functions_dests,optional"`
			IgnoreGlobs    []string `hcl:"ignore_globs,optional"`
		} `hcl:"extract,block"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return errors.Errorf("decoding HCL: %s", diags.Error())
	}

	if hclCfg.Home != "" {
		cfg.Home = hclCfg.Home
	}
	if t := hclCfg.Transfer; t != nil {
		setIf(&cfg.Transfer.Host, t.Host)
		setIf(&cfg.Transfer.User, t.User)
		setIf(&cfg.Transfer.RemoteKeyDir, t.RemoteKeyDir)
		setIf(&cfg.Transfer.RemoteStagingDir, t.RemoteStagingDir)
		setIf(&cfg.Transfer.LocalKeyDir, t.LocalKeyDir)
		setIf(&cfg.Transfer.LocalStagingDir, t.LocalStagingDir)
	}
	if r := hclCfg.Repo; r != nil {
		setIf(&cfg.Repo.URL, r.URL)
		setIf(&cfg.Repo.SSHURL, r.SSHURL)
		setIf(&cfg.Repo.Checkout, r.Checkout)
		setIf(&cfg.Repo.Branch, r.Branch)
	}
	if d := hclCfg.Docker; d != nil {
		setIf(&cfg.Docker.Image, d.Image)
	}
	if c := hclCfg.Conda; c != nil {
		setIf(&cfg.Conda.EnvName, c.EnvName)
		setIf(&cfg.Conda.PythonVersion, c.PythonVersion)
		if len(c.Requirements) > 0 {
			cfg.Conda.Requirements = c.Requirements
		}
		setIf(&cfg.Conda.RequirementsFile, c.RequirementsFile)
		setIf(&cfg.Conda.ActivateHook, c.ActivateHook)
		setIf(&cfg.Conda.DeactivateHook, c.DeactivateHook)
		setIf(&cfg.Conda.RProfile, c.RProfile)
	}
	if l := hclCfg.Localize; l != nil {
		setIf(&cfg.Localize.Root, l.Root)
		if len(l.Suffixes) > 0 {
			cfg.Localize.Suffixes = l.Suffixes
		}
		if len(l.Rules) > 0 {
			cfg.Localize.Rules = nil
			for _, r := range l.Rules {
				cfg.Localize.Rules = append(cfg.Localize.Rules, Rule{From: r.From, To: r.To})
			}
		}
	}
	if e := hclCfg.Extract; e != nil {
		setIf(&cfg.Extract.SourceDir, e.SourceDir)
		setIf(&cfg.Extract.PythonDest, e.PythonDest)
		setIf(&cfg.Extract.RDest, e.RDest)
		setIf(&cfg.Extract.FunctionsDir, e.FunctionsDir)
		if len(e.FunctionsDests) > 0 {
			cfg.Extract.FunctionsDests = e.FunctionsDests
		}
		if len(e.IgnoreGlobs) > 0 {
			cfg.Extract.IgnoreGlobs = e.IgnoreGlobs
		}
	}

	return nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
