// buildgen scans Go packages for struct declarations carrying the
// builder marker and writes a builder companion file for each one.
//
// Run: buildgen [flags] [packages]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/syssam/buildgen/compiler/gen"
	"github.com/syssam/buildgen/compiler/load"
)

const defaultConfigFile = "buildgen.yaml"

// fileConfig mirrors the optional buildgen.yaml settings. Command-line
// flags win over values from the file.
type fileConfig struct {
	Patterns []string `yaml:"patterns,omitempty"`
	Types    []string `yaml:"types,omitempty"`
	Target   string   `yaml:"target,omitempty"`
	Suffix   string   `yaml:"suffix,omitempty"`
	Header   string   `yaml:"header,omitempty"`
	Workers  int      `yaml:"workers,omitempty"`
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("buildgen: ")

	var (
		configPath = flag.String("config", "", "settings file (default "+defaultConfigFile+" when present)")
		typeNames  = flag.String("type", "", "comma-separated target type names (default all marked types)")
		target     = flag.String("target", "", "output directory (default next to each declaration)")
		suffix     = flag.String("suffix", "", "generated file name suffix (default "+gen.DefaultSuffix+")")
		header     = flag.String("header", "", "header comment of generated files")
		workers    = flag.Int("workers", 0, "number of parallel file-rendering workers")
		watch      = flag.Bool("watch", false, "keep running and regenerate when source files change")
	)
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "Usage: buildgen [flags] [packages]")
		fmt.Fprintln(flag.CommandLine.Output(), "Packages are go/packages patterns, e.g. ./... (the default).")
		flag.PrintDefaults()
	}
	flag.Parse()

	fc, err := readFileConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *target == "" {
		*target = fc.Target
	}
	if *suffix == "" {
		*suffix = fc.Suffix
	}
	if *header == "" {
		*header = fc.Header
	}
	if *workers == 0 {
		*workers = fc.Workers
	}
	types := fc.Types
	if *typeNames != "" {
		types = strings.Split(*typeNames, ",")
	}
	patterns := flag.Args()
	if len(patterns) == 0 {
		patterns = fc.Patterns
	}
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	var opts []gen.Option
	if *target != "" {
		opts = append(opts, gen.WithTarget(*target))
	}
	if *suffix != "" {
		opts = append(opts, gen.WithSuffix(*suffix))
	}
	if *header != "" {
		opts = append(opts, gen.WithHeader(*header))
	}
	if *workers != 0 {
		opts = append(opts, gen.WithWorkers(*workers))
	}

	lc := &load.Config{Patterns: patterns, Types: types}
	dirs, err := run(lc, opts)
	if err != nil {
		log.Fatal(err)
	}
	if *watch {
		outSuffix := *suffix
		if outSuffix == "" {
			outSuffix = gen.DefaultSuffix
		}
		if err := watchLoop(lc, opts, outSuffix, dirs); err != nil {
			log.Fatal(err)
		}
	}
}

// run loads the marked declarations and generates their builder files,
// returning the source directories for watch mode.
func run(lc *load.Config, opts []gen.Option) ([]string, error) {
	schemas, err := load.Load(lc)
	if err != nil {
		return nil, err
	}
	if len(schemas) == 0 {
		log.Printf("no marked declarations in %s", strings.Join(lc.Patterns, " "))
		return nil, nil
	}
	cfg, err := gen.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	graph, err := gen.NewGraph(cfg, schemas...)
	if err != nil {
		return nil, err
	}
	if err := gen.NewGenerator(graph).Generate(context.Background()); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(schemas))
	dirs := make([]string, 0, len(schemas))
	for _, t := range graph.Nodes {
		log.Printf("wrote %s", filepath.Join(t.Dir(), t.FileName()))
		if t.File() == "" {
			continue
		}
		if dir := filepath.Dir(t.File()); !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs, nil
}

// watchLoop regenerates whenever a source file in one of the watched
// directories changes. Events are debounced so an editor save touching
// several files triggers a single run.
func watchLoop(lc *load.Config, opts []gen.Option, outSuffix string, dirs []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	log.Printf("watching %d directories, interrupt to stop", len(dirs))

	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if sourceChange(ev, outSuffix) {
				debounce.Reset(200 * time.Millisecond)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		case <-debounce.C:
			if _, err := run(lc, opts); err != nil {
				log.Printf("regenerate: %v", err)
			}
		}
	}
}

// sourceChange reports whether an event concerns a Go source file a
// regeneration could depend on. Generated output and tests are ignored
// so writing a builder file does not retrigger the loop.
func sourceChange(ev fsnotify.Event, outSuffix string) bool {
	name := filepath.Base(ev.Name)
	if !strings.HasSuffix(name, ".go") ||
		strings.HasSuffix(name, outSuffix) ||
		strings.HasSuffix(name, "_test.go") {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}

// readFileConfig loads the optional settings file. An explicitly named
// file must exist; the default file is used only when present.
func readFileConfig(path string) (*fileConfig, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return &fileConfig{}, nil
		}
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	fc := &fileConfig{}
	if err := yaml.Unmarshal(buf, fc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return fc, nil
}
