package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

type target struct {
	Name   string
	Pkg    string
	Output string
}

func main() {
	var (
		srcDir string
		outDir string
		only   string
	)
	flag.StringVar(&srcDir, "src", "modules", "directory with module sources")
	flag.StringVar(&outDir, "o", "bin/modules", "output directory for .so files")
	flag.StringVar(&only, "only", "", "comma-separated module names to build")
	flag.Parse()

	targets, err := discover(srcDir, outDir)
	if err != nil {
		exitErr(fmt.Errorf("discover modules: %w", err))
	}
	targets = filterTargets(targets, only)
	if len(targets) == 0 {
		exitErr(fmt.Errorf("no modules found in %s", srcDir))
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		exitErr(fmt.Errorf("mkdir output dir: %w", err))
	}

	for _, t := range targets {
		if err := build(t); err != nil {
			exitErr(fmt.Errorf("build %s: %w", t.Name, err))
		}
		fmt.Printf("module built: %s\n", t.Output)
	}
	fmt.Printf("Modules: %d\n", len(targets))
}

// discover находит каталоги с package main внутри srcDir.
func discover(srcDir, outDir string) ([]target, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", srcDir, err)
	}
	targets := make([]target, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(srcDir, e.Name(), "main.go")); err != nil {
			continue
		}
		targets = append(targets, target{
			Name:   e.Name(),
			Pkg:    "./" + filepath.ToSlash(filepath.Join(srcDir, e.Name())),
			Output: filepath.Join(outDir, e.Name()+".so"),
		})
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Name < targets[j].Name })
	return targets, nil
}

func filterTargets(targets []target, only string) []target {
	if strings.TrimSpace(only) == "" {
		return targets
	}
	want := map[string]struct{}{}
	for _, name := range strings.Split(only, ",") {
		if name = strings.TrimSpace(name); name != "" {
			want[name] = struct{}{}
		}
	}
	out := targets[:0:0]
	for _, t := range targets {
		if _, ok := want[t.Name]; ok {
			out = append(out, t)
		}
	}
	return out
}

func buildArgs(t target) []string {
	return []string{"build", "-buildmode=plugin", "-o", t.Output, t.Pkg}
}

func build(t target) error {
	cmd := exec.Command("go", buildArgs(t)...)
	var stderr bytes.Buffer
	cmd.Stdout = os.Stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func exitErr(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
