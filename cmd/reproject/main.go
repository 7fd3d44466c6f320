package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	gojson "github.com/goccy/go-json"
	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"

	"github.com/samirrijal/reproj/internal/geojson"
	"github.com/samirrijal/reproj/internal/proj"
	"github.com/samirrijal/reproj/internal/reproject"
)

type Options struct {
	Zone     string `short:"z" long:"zone" description:"Source zone (29N, 30N, 31N)" required:"true"`
	Dest     string `short:"d" long:"dest" description:"Destination system" default:"WGS84"`
	Input    string `short:"i" long:"in" description:"Input JSON file (array of pairs or GeoJSON). Reads from stdin if empty"`
	Output   string `short:"o" long:"out" description:"Output file path. Writes to stdout if empty"`
	Format   string `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Pretty   bool   `short:"p" long:"pretty" description:"Indent JSON output"`
	MaxDepth int    `long:"max-depth" description:"Maximum nesting depth of the payload" default:"64"`
	KeepDims bool   `long:"keep-extra-dims" description:"Keep elevation and other extra pair members"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	in := io.Reader(os.Stdin)
	if opts.Input != "" {
		f, err := os.Open(opts.Input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	out, stats, err := run(context.Background(), opts, in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, out, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Converted %d pairs (%s) to %s\n", stats.Pairs, stats.Strategy, opts.Output)
		return
	}
	os.Stdout.Write(out)
	if opts.Format == "json" {
		fmt.Println()
	}
}

// run converts the payload read from in and renders it in opts.Format.
func run(ctx context.Context, opts Options, in io.Reader) ([]byte, reproject.Stats, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, reproject.Stats{}, fmt.Errorf("read input: %w", err)
	}

	fn, err := proj.NewTransformer(proj.DefaultRegistry()).Bind(opts.Zone, opts.Dest)
	if err != nil {
		return nil, reproject.Stats{}, err
	}

	raw, err := reproject.Decode(data)
	if err != nil {
		return nil, reproject.Stats{}, err
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = reproject.DefaultMaxDepth
	}
	engine := reproject.NewEngine(maxDepth, opts.KeepDims)
	result, stats, err := engine.TransformPayload(ctx, raw, fn, geojson.IsGeoJSON)
	if err != nil {
		return nil, stats, err
	}

	if opts.Format == "yaml" {
		out, err := yaml.Marshal(plain(result))
		return out, stats, err
	}

	out, err := reproject.Encode(result)
	if err != nil || !opts.Pretty {
		return out, stats, err
	}
	var buf bytes.Buffer
	if err := gojson.Indent(&buf, out, "", "  "); err != nil {
		return nil, stats, err
	}
	return buf.Bytes(), stats, nil
}

// plain replaces json.Number leaves with int64 or float64 so YAML renders
// them as numbers rather than quoted strings.
func plain(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e)
		}
		return out
	default:
		return v
	}
}
