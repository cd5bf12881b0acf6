package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/reoring/jtd"
	"github.com/reoring/jtd/i18n"
	"github.com/reoring/jtd/shape"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "validate":
		return validateCmd(args[1:], stdout, stderr)
	case "verify":
		return verifyCmd(args[1:], stdout, stderr)
	case "shape":
		return shapeCmd(args[1:], stdout, stderr)
	default:
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "jtd CLI\n\nUsage:\n  jtd validate -schema schema.json [-max-errors N] [-fail-fast] [-reject-duplicates] [-lang en|ja] instance.json...\n  jtd verify -schema schema.json\n  jtd shape -schema schema.json [-def name]\n\nSchemas ending in .yaml or .yml are read as YAML.")
}

func loadSchema(path string) (*jtd.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return jtd.ParseYAML(data)
	default:
		return jtd.ParseJSON(data)
	}
}

func validateCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var schemaPath, lang string
	var opt jtd.ValidateOpt
	var rejectDup bool
	fs.StringVar(&schemaPath, "schema", "", "schema file")
	fs.IntVar(&opt.MaxErrors, "max-errors", 0, "stop after N issues (0 = unlimited)")
	fs.BoolVar(&opt.FailFast, "fail-fast", false, "stop at the first issue")
	fs.IntVar(&opt.MaxDepth, "max-depth", 0, "ref expansion limit (0 = default)")
	fs.BoolVar(&rejectDup, "reject-duplicates", false, "report duplicate object keys")
	fs.StringVar(&lang, "lang", "", "message language")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if schemaPath == "" || fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	if lang != "" {
		i18n.SetLanguage(lang)
	}
	if rejectDup {
		opt.Decode.OnDuplicateKey = jtd.DuplicateReject
	}
	s, err := loadSchema(schemaPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	v, err := jtd.Compile(s)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	ctx := context.Background()
	status := 0
	for _, name := range fs.Args() {
		data, err := os.ReadFile(name)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		err = v.ValidateJSON(ctx, data, opt)
		if err == nil {
			fmt.Fprintf(stdout, "%s: ok\n", name)
			continue
		}
		iss, ok := jtd.AsIssues(err)
		if !ok {
			fmt.Fprintf(stderr, "%s: %v\n", name, err)
			return 2
		}
		status = 1
		for _, it := range iss {
			fmt.Fprintf(stdout, "%s: %s: %s (schema %s): %s\n", name, it.Code, pointerOrRoot(it.InstancePath), pointerOrRoot(it.SchemaPath), it.Message)
		}
	}
	return status
}

func pointerOrRoot(p jtd.Path) string {
	if len(p) == 0 {
		return "/"
	}
	return p.Pointer()
}

func verifyCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var schemaPath string
	fs.StringVar(&schemaPath, "schema", "", "schema file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if schemaPath == "" {
		fs.Usage()
		return 2
	}
	if _, err := loadSchema(schemaPath); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintf(stdout, "%s: ok\n", schemaPath)
	return 0
}

func shapeCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("shape", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var schemaPath, def string
	fs.StringVar(&schemaPath, "schema", "", "schema file")
	fs.StringVar(&def, "def", "", "print the shape of one definition")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if schemaPath == "" {
		fs.Usage()
		return 2
	}
	s, err := loadSchema(schemaPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	var sh *shape.Shape
	if def != "" {
		sh, err = shape.InferDefinition(s, def)
	} else {
		sh, err = shape.Infer(s)
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintln(stdout, sh)
	// Print each named definition once so recursive shapes can be read.
	for _, name := range jtd.NewResolver(s).Definitions() {
		d, err := shape.InferDefinition(s, name)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "%s = %s\n", name, d.Elem())
	}
	return 0
}
