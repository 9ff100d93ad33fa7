package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chazu/doml/gowrap"
	"github.com/chazu/doml/manifest"
)

// defaultWrapDir is used when neither -output nor a manifest names one.
const defaultWrapDir = ".doml/wrap"

// wrapTarget is one Go package to generate binding glue for. An empty
// Include binds every exported struct.
type wrapTarget struct {
	ImportPath string
	Include    []string
}

// wrapOptions is the resolved configuration for one `doml wrap`.
type wrapOptions struct {
	output  string
	targets []wrapTarget
}

// handleWrapCommand processes the `doml wrap` subcommand.
// Usage:
//
//	doml wrap                     # [[go-wrap.packages]] from doml.toml
//	doml wrap image               # ad-hoc, every exported struct
//	doml wrap -output glue image
func handleWrapCommand(args []string, m *manifest.Manifest, verbose bool) {
	opts, err := parseWrapFlags(args, m)
	if err != nil {
		fatalf("%v", err)
	}

	for _, target := range opts.targets {
		path, model, err := generateGlue(target, opts.output)
		if err != nil {
			fatalf("wrap %s: %v", target.ImportPath, err)
		}
		if verbose {
			fmt.Printf("%s: %d types, %d bindings -> %s\n",
				target.ImportPath, len(model.Types), bindingCount(model), path)
		}
	}
}

func parseWrapFlags(args []string, m *manifest.Manifest) (*wrapOptions, error) {
	fs := flag.NewFlagSet("wrap", flag.ContinueOnError)
	output := fs.String("output", "", "Directory for generated glue (default: [go-wrap] output)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts := &wrapOptions{output: *output}
	if opts.output == "" {
		opts.output = defaultWrapDir
		if m != nil {
			opts.output = m.WrapOutputDir()
		}
	}

	if fs.NArg() > 0 {
		for _, path := range fs.Args() {
			opts.targets = append(opts.targets, wrapTarget{ImportPath: path})
		}
		return opts, nil
	}

	if m == nil {
		return nil, fmt.Errorf("no packages given and no %s found", manifest.FileName)
	}
	if len(m.GoWrap.Packages) == 0 {
		return nil, fmt.Errorf("no packages given and no [[go-wrap.packages]] in %s", manifest.FileName)
	}
	for _, pkg := range m.GoWrap.Packages {
		opts.targets = append(opts.targets, wrapTarget{ImportPath: pkg.Import, Include: pkg.Include})
	}
	return opts, nil
}

// generateGlue introspects target and writes its registration code to
// <outputDir>/<package>/wrap.go, returning the file path.
func generateGlue(target wrapTarget, outputDir string) (string, *gowrap.PackageModel, error) {
	var include map[string]bool
	if len(target.Include) > 0 {
		include = make(map[string]bool, len(target.Include))
		for _, name := range target.Include {
			include[name] = true
		}
	}

	model, err := gowrap.IntrospectPackage(target.ImportPath, include)
	if err != nil {
		return "", nil, err
	}
	code, err := gowrap.GenerateGoGlue(model)
	if err != nil {
		return "", nil, err
	}

	dir := filepath.Join(outputDir, gowrap.PackageDirName(model.Name))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, err
	}
	path := filepath.Join(dir, "wrap.go")
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return "", nil, err
	}
	return path, model, nil
}

// bindingCount is the number of bindings the glue registers: a
// constructor and a call target per type, a getter and setter per field.
func bindingCount(model *gowrap.PackageModel) int {
	n := 0
	for _, t := range model.Types {
		n += 2 + 2*len(t.Fields)
	}
	return n
}
