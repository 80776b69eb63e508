// Package main implements glb2obj, a batch command line converter that
// turns binary glTF files into OBJ/MTL artifacts with the same engine
// the API server runs.
package main

import (
	"archive/zip"
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/glbobx/glbobx-api/internal/converter"
)

// options holds the parsed command line flags.
type options struct {
	input     string
	output    string
	recursive bool
	overwrite bool
	quiet     bool
}

// stats counts per-file outcomes for the final summary and exit code.
type stats struct {
	converted int
	skipped   int
	failed    int
}

func main() {
	opts := parseFlags(os.Args[1:])

	st, err := run(context.Background(), opts, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "glb2obj: %v\n", err)
		os.Exit(2)
	}
	if st.failed > 0 {
		os.Exit(1)
	}
}

func parseFlags(args []string) options {
	flags := flag.NewFlagSet("glb2obj", flag.ExitOnError)

	var opts options
	flags.StringVar(&opts.input, "input", ".", "file or directory holding .glb models")
	flags.StringVar(&opts.output, "output", "", "directory for generated artifacts (defaults to each model's directory)")
	flags.BoolVar(&opts.recursive, "recursive", false, "descend into subdirectories")
	flags.BoolVar(&opts.overwrite, "overwrite", false, "regenerate artifacts that already exist")
	flags.BoolVar(&opts.quiet, "quiet", false, "suppress per-file output")

	// ExitOnError makes this infallible
	_ = flags.Parse(args)
	return opts
}

// run converts every discovered model and reports aggregate counts. It
// returns an error only for problems that prevent the batch from running
// at all; per-file failures are counted instead.
func run(ctx context.Context, opts options, out io.Writer) (stats, error) {
	var st stats

	inputs, err := collectInputs(opts.input, opts.recursive)
	if err != nil {
		return st, err
	}
	if len(inputs) == 0 {
		return st, fmt.Errorf("no .glb files found under %s", opts.input)
	}

	for _, path := range inputs {
		if err := ctx.Err(); err != nil {
			return st, err
		}

		outDir := opts.output
		if outDir == "" {
			outDir = filepath.Dir(path)
		}

		stem := converter.Stem(filepath.Base(path))
		objPath := filepath.Join(outDir, stem+".obj")
		if !opts.overwrite {
			if _, err := os.Stat(objPath); err == nil {
				st.skipped++
				if !opts.quiet {
					fmt.Fprintf(out, "skipped %s (%s exists)\n", path, objPath)
				}
				continue
			}
		}

		artifacts, err := convertFile(ctx, path, outDir)
		if err != nil {
			st.failed++
			if !opts.quiet {
				fmt.Fprintf(out, "failed %s: %v\n", path, err)
			}
			continue
		}

		st.converted++
		if !opts.quiet {
			fmt.Fprintf(out, "converted %s -> %s\n", path, strings.Join(artifacts, ", "))
		}
	}

	if !opts.quiet {
		fmt.Fprintf(out, "converted %d, skipped %d, failed %d\n", st.converted, st.skipped, st.failed)
	}
	return st, nil
}

// collectInputs resolves the input path into the ordered list of .glb
// files to convert. A file input is returned as-is; a directory is
// scanned for .glb entries, descending only when recursive is set.
func collectInputs(input string, recursive bool) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("cannot read input %s: %w", input, err)
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	var inputs []string
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != input {
				return fs.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".glb") {
			inputs = append(inputs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", input, err)
	}
	return inputs, nil
}

// convertFile converts one model and writes its artifacts into outDir,
// returning the artifact names.
func convertFile(ctx context.Context, path, outDir string) ([]string, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	archive, artifacts, err := converter.Convert(ctx, payload, filepath.Base(path))
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	if err := unpackArchive(archive, outDir); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// unpackArchive expands the converter's ZIP output into dir. Artifact
// names come from the converter, never from user input, so they are flat
// file names by construction.
func unpackArchive(archive []byte, dir string) error {
	r, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return err
	}

	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return err
		}
		data, err := io.ReadAll(rc)
		if cerr := rc.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}

		if err := os.WriteFile(filepath.Join(dir, filepath.Base(f.Name)), data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
