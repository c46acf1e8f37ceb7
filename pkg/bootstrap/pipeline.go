// Package bootstrap runs the full environment setup as a strictly ordered,
// sequential pipeline. Each step fully completes before the next begins;
// critical failures abort the run, non-critical ones warn and continue.
package bootstrap

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/ChrisPachulski/sync-and-setup/pkg/config"
	"github.com/ChrisPachulski/sync-and-setup/pkg/conda"
	"github.com/ChrisPachulski/sync-and-setup/pkg/extract"
	"github.com/ChrisPachulski/sync-and-setup/pkg/gitrepo"
	"github.com/ChrisPachulski/sync-and-setup/pkg/install"
	"github.com/ChrisPachulski/sync-and-setup/pkg/localize"
	"github.com/ChrisPachulski/sync-and-setup/pkg/platform"
	"github.com/ChrisPachulski/sync-and-setup/pkg/shell"
	"github.com/ChrisPachulski/sync-and-setup/pkg/transfer"
	"github.com/ChrisPachulski/sync-and-setup/pkg/userlog"
)

// 🪜 Step is one pipeline stage.
type Step struct {
	Name     string
	Critical bool
	Run      func(ctx context.Context) error
}

// 🩹 Remediator is implemented by errors that carry a manual recovery
// procedure worth printing verbatim.
type Remediator interface {
	Remediation() string
}

// 🎯 Pipeline is the ordered bootstrap run.
type Pipeline struct {
	steps []Step
	log   *userlog.Logger
}

// 🏭 New builds the standard pipeline for cfg. The host is detected lazily
// inside the first step so construction never touches the system.
func New(cfg *config.Config, r shell.Runner, log *userlog.Logger) *Pipeline {
	var host platform.Host

	steps := []Step{
		{
			Name:     "detect platform",
			Critical: true,
			Run: func(ctx context.Context) error {
				h, err := platform.Detect()
				if err != nil {
					return err
				}
				host = h
				zerolog.Ctx(ctx).Info().
					Str("os", h.OS).
					Str("distro", h.Distro).
					Str("package_manager", string(h.PackageManager)).
					Msg("host detected")
				return nil
			},
		},
		{
			Name:     "install packages",
			Critical: false,
			Run: func(ctx context.Context) error {
				errs := install.EnsureAll(ctx, r, host, install.DefaultPackages())
				if len(errs) > 0 {
					return errors.Errorf("%d package installs failed", len(errs))
				}
				return nil
			},
		},
		{
			Name:     "pull container image",
			Critical: false,
			Run: func(ctx context.Context) error {
				return install.PullImage(ctx, r, cfg.Docker.Image)
			},
		},
		{
			Name:     "sync keys and staging files",
			Critical: true,
			Run: func(ctx context.Context) error {
				return transfer.Pull(ctx, r, transfer.Options{
					Host:             cfg.Transfer.Host,
					User:             cfg.Transfer.User,
					RemoteKeyDir:     cfg.Transfer.RemoteKeyDir,
					RemoteStagingDir: cfg.Transfer.RemoteStagingDir,
					LocalKeyDir:      cfg.Transfer.LocalKeyDir,
					LocalStagingDir:  cfg.Transfer.LocalStagingDir,
				})
			},
		},
		{
			Name:     "refresh production checkout",
			Critical: true,
			Run: func(ctx context.Context) error {
				return gitrepo.Ensure(ctx, r, gitrepo.Options{
					URL:    cfg.Repo.URL,
					SSHURL: cfg.Repo.SSHURL,
					Dir:    cfg.Repo.Checkout,
					Branch: cfg.Repo.Branch,
				})
			},
		},
		{
			Name:     "localize checkout paths",
			Critical: true,
			Run: func(ctx context.Context) error {
				return Localize(ctx, cfg)
			},
		},
		{
			Name:     "extract script payloads",
			Critical: true,
			Run: func(ctx context.Context) error {
				return Extract(ctx, cfg)
			},
		},
		{
			Name:     "provision data-science runtime",
			Critical: true,
			Run: func(ctx context.Context) error {
				return conda.Provision(ctx, r, conda.Options{
					EnvName:          cfg.Conda.EnvName,
					PythonVersion:    cfg.Conda.PythonVersion,
					Requirements:     cfg.Conda.Requirements,
					RequirementsFile: cfg.Conda.RequirementsFile,
					ActivateHook:     cfg.Conda.ActivateHook,
					DeactivateHook:   cfg.Conda.DeactivateHook,
					RProfile:         cfg.Conda.RProfile,
				})
			},
		},
	}

	return &Pipeline{steps: steps, log: log}
}

// 🏃 Run executes the steps in order. The first critical failure stops the
// run and is returned; non-critical failures are warned and skipped past.
func (p *Pipeline) Run(ctx context.Context) error {
	ctx = userlog.NewContext(ctx, p.log)
	for _, step := range p.steps {
		p.log.StartStep(userlog.StepOperation{Name: step.Name, Critical: step.Critical})

		err := step.Run(ctx)
		p.log.EndStep(err)
		if err == nil {
			continue
		}

		var rem Remediator
		if errors.As(err, &rem) {
			p.log.Remediation(rem.Remediation())
		}

		if step.Critical {
			return errors.Errorf("step %q: %w", step.Name, err)
		}
		p.log.Warningf("step %q failed, continuing: %v", step.Name, err)
	}
	return nil
}

// 🔄 Localize runs the path-localization pass over the checkout, reporting
// per-file outcomes to the operator logger carried in ctx.
func Localize(ctx context.Context, cfg *config.Config) error {
	log := userlog.FromContext(ctx)

	rules := make([]localize.Rule, 0, len(cfg.Localize.Rules))
	for _, r := range cfg.Localize.Rules {
		rules = append(rules, localize.Rule{From: r.From, To: r.To})
	}

	loc, err := localize.New(rules, cfg.Localize.Suffixes)
	if err != nil {
		return errors.Errorf("building localizer: %w", err)
	}

	report, err := loc.Localize(ctx, cfg.Localize.Root)
	if err != nil {
		return errors.Errorf("localizing %s: %w", cfg.Localize.Root, err)
	}

	for _, f := range report.Files {
		if !f.Modified && f.Err == nil {
			continue
		}
		log.LogFileOperation(userlog.FileOperation{
			Path:         f.Path,
			Kind:         "script",
			Status:       fileStatus(f),
			IsModified:   f.Modified,
			IsSkipped:    f.Err != nil,
			Replacements: f.Replacements,
		})
	}
	return nil
}

func fileStatus(f localize.FileResult) string {
	switch {
	case f.Err != nil:
		return "failed"
	case f.Modified:
		return "localized"
	default:
		return "unchanged"
	}
}

// 📤 Extract runs the payload-extraction pass, reporting each produced
// payload to the operator logger carried in ctx.
func Extract(ctx context.Context, cfg *config.Config) error {
	log := userlog.FromContext(ctx)

	ex, err := extract.New(extract.Options{
		SourceDir:      cfg.Extract.SourceDir,
		PythonDest:     cfg.Extract.PythonDest,
		RDest:          cfg.Extract.RDest,
		FunctionsDir:   cfg.Extract.FunctionsDir,
		FunctionsDests: cfg.Extract.FunctionsDests,
		IgnoreGlobs:    cfg.Extract.IgnoreGlobs,
	})
	if err != nil {
		return errors.Errorf("building extractor: %w", err)
	}

	summary, err := ex.Extract(ctx)
	if err != nil {
		return errors.Errorf("extracting payloads: %w", err)
	}

	for _, p := range summary.Payloads {
		log.LogFileOperation(userlog.FileOperation{
			Path:   p.Dest,
			Kind:   string(p.Kind),
			Status: "extracted",
			IsNew:  true,
		})
	}
	for _, s := range summary.Skipped {
		log.LogFileOperation(userlog.FileOperation{
			Path:      s,
			Status:    "skipped",
			IsSkipped: true,
		})
	}
	return nil
}
