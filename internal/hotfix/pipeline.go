// Package hotfix runs the quick-hotfix pipeline: resolve the archive root of
// the selected changes, map each change to the files that ship, and stream
// them into one zip.
package hotfix

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"quick-hotfix/internal/bundle"
	"quick-hotfix/internal/change"
	"quick-hotfix/internal/config"
	"quick-hotfix/internal/locate"
	"quick-hotfix/internal/logging"
	"quick-hotfix/internal/meta"
	"quick-hotfix/internal/progress"
	"quick-hotfix/internal/resolve"
)

// Options wires the pipeline's collaborators. Only Finder is required.
type Options struct {
	Finder change.RootFinder
	// OutputDir, when set, overrides the compiled output directory of the
	// layout merged from project config and build detection.
	OutputDir string
	Progress  progress.Reporter
	Log       *logging.Logger
	Manifest  bool   // also write <dest>.json
	Message   string // recorded in the manifest
	Now       func() time.Time
}

// Result summarises one execution.
type Result struct {
	Root      string
	Build     meta.Info
	Artifacts []locate.Artifact
	Report    bundle.Report
	Manifest  string // path of the sidecar manifest, if written
}

// Pipeline is the hotfix command object.
type Pipeline struct {
	opt Options
}

func New(opt Options) *Pipeline {
	if opt.Progress == nil {
		opt.Progress = progress.Nop{}
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	return &Pipeline{opt: opt}
}

// CanExecute reports whether the selection contains at least one change
// with an after-revision.
func (p *Pipeline) CanExecute(entries []change.Entry) bool {
	return len(change.AfterPaths(entries)) > 0
}

// Execute builds the hotfix archive for entries at dest. An empty dest is
// replaced by a name suggested from the message, in the archive root.
func (p *Pipeline) Execute(ctx context.Context, entries []change.Entry, dest string) (Result, error) {
	if p.opt.Finder == nil {
		return Result{}, errors.New("hotfix: no VCS root finder configured")
	}

	roots, err := change.Roots(entries, p.opt.Finder)
	if err != nil {
		return Result{}, err
	}
	root, err := resolve.ResolveRoot(roots)
	if err != nil {
		return Result{}, err
	}
	p.opt.Log.Debugf("archive root %s (%d roots)", root, len(roots))

	if strings.TrimSpace(dest) == "" {
		dest = SuggestDestination(root, p.opt.Message)
		p.opt.Log.Infof("no destination given, using %s", dest)
	}
	dest, err = Destination(dest)
	if err != nil {
		return Result{}, err
	}

	res := Result{Root: root, Build: meta.Detect(root)}
	proj, err := config.LoadProject(root)
	if err != nil {
		return Result{}, err
	}
	layout := proj.Layout(res.Build)
	if p.opt.OutputDir != "" {
		layout.OutputDir = filepath.ToSlash(p.opt.OutputDir)
	}
	loc := locate.New(layout, p.opt.Log)

	res.Artifacts, err = loc.LocateAll(entries, root)
	if err != nil {
		return Result{}, err
	}
	if len(res.Artifacts) == 0 {
		p.opt.Log.Warnf("nothing to archive: no change resolved to a file")
	}

	res.Report, err = p.archive(ctx, res.Artifacts, dest)
	if err != nil {
		return Result{}, err
	}

	if p.opt.Manifest || proj.Manifest {
		m := bundle.NewManifest(res.Report, root, p.opt.Now().UTC().Format(time.RFC3339))
		m.Build, m.Module, m.JDK = res.Build.Build, res.Build.Module, res.Build.JDK
		m.Message = p.opt.Message
		res.Manifest = bundle.ManifestPath(dest)
		if err := bundle.WriteManifest(res.Manifest, m); err != nil {
			return Result{}, fmt.Errorf("write manifest: %w", err)
		}
	}
	p.opt.Log.Infof("wrote %s (%d entries from %d changes)", dest, len(res.Report.Entries), len(entries))
	return res, nil
}

// archive runs the writer off the caller's goroutine while the progress
// sink shows indeterminate progress, and waits for it.
func (p *Pipeline) archive(ctx context.Context, arts []locate.Artifact, dest string) (bundle.Report, error) {
	type outcome struct {
		rep bundle.Report
		err error
	}
	p.opt.Progress.Start(fmt.Sprintf("archiving %d entries into %s", len(arts), dest))
	defer p.opt.Progress.Stop()

	done := make(chan outcome, 1)
	go func() {
		rep, err := bundle.WriteArchive(ctx, arts, dest, bundle.Options{Log: p.opt.Log})
		done <- outcome{rep, err}
	}()
	o := <-done
	return o.rep, o.err
}
