package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/davecgh/go-spew/spew"
	json "github.com/goccy/go-json"
	"github.com/robfig/cron/v3"

	osc "github.com/reoring/oscconnect"
	"github.com/reoring/oscconnect/client"
	"github.com/reoring/oscconnect/config"
	"github.com/reoring/oscconnect/reader"
)

type pullOptions struct {
	cfgPath     string
	envFile     string
	format      string
	skipInvalid bool
	schedule    string
	verbose     bool
}

func pullCmd(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("pull", flag.ContinueOnError)
	var o pullOptions
	fs.StringVar(&o.cfgPath, "config", "", "path to the YAML config")
	fs.StringVar(&o.envFile, "env", "", "optional .env file")
	fs.StringVar(&o.format, "format", "json", "output format: json or spew")
	fs.BoolVar(&o.skipInvalid, "skip-invalid", false, "log and skip documents that do not fit the schema")
	fs.StringVar(&o.schedule, "schedule", "", "cron spec with seconds; pull repeatedly until interrupted")
	fs.BoolVar(&o.verbose, "v", false, "enable debug logs")
	if err := fs.Parse(args); err != nil || o.cfgPath == "" {
		return errUsage
	}
	if o.format != "json" && o.format != "spew" {
		return fmt.Errorf("%w: unknown format %q", errUsage, o.format)
	}
	logger := newLogger(os.Stderr, o.verbose)

	cfg, err := loadConfig(o.cfgPath, o.envFile)
	if err != nil {
		return err
	}
	c := &config.Collector{}
	cfg.Validate(c)
	if err := c.Err(); err != nil {
		return fmt.Errorf("%w:\n%v", errInvalidConfig, err)
	}
	schema, err := cfg.ResolveSchema()
	if err != nil {
		return err
	}
	tr, err := osc.NewTransformer(schema)
	if err != nil {
		return err
	}
	cl, err := client.FromConfig(cfg, logger)
	if err != nil {
		return err
	}

	run := func(ctx context.Context) error { return pullOnce(ctx, cfg, cl, tr, o, logger, out) }
	if o.schedule == "" {
		return run(ctx)
	}
	return runScheduled(ctx, o.schedule, run, logger)
}

func pullOnce(ctx context.Context, cfg *config.Config, cl *client.Client, tr *osc.Transformer, o pullOptions, logger *slog.Logger, out io.Writer) error {
	docs, err := cl.Documents(cfg)
	if err != nil {
		return err
	}
	policy := reader.FailOnError
	if o.skipInvalid {
		policy = reader.SkipOnError
	}
	r := reader.New(docs, tr, reader.WithErrorPolicy(policy), reader.WithLogger(logger))
	logger.InfoContext(ctx, "pull started", "run_id", r.RunID().String(), "reference", cfg.ReferenceName, "query_type", string(cfg.QueryType))

	enc := json.NewEncoder(out)
	for {
		rec, err := r.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if o.format == "spew" {
			view, err := recordView(rec)
			if err != nil {
				return err
			}
			dumper.Fdump(out, view)
			continue
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
}

// runScheduled runs job on the cron spec until ctx is cancelled. Overlapping
// runs are skipped and panics are recovered.
func runScheduled(ctx context.Context, spec string, job func(context.Context) error, logger *slog.Logger) error {
	c := cron.New(cron.WithSeconds(), cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))
	_, err := c.AddFunc(spec, func() {
		if err := job(ctx); err != nil && ctx.Err() == nil {
			logger.ErrorContext(ctx, "scheduled pull failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	logger.InfoContext(ctx, "scheduler started", "schedule", spec)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	logger.InfoContext(ctx, "scheduler stopped")
	return nil
}

var dumper = spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true, DisableCapacities: true}

// recordView decodes the record's JSON form so a dump shows field names and
// values, with decimals as strings at their declared scale.
func recordView(rec *osc.Record) (map[string]any, error) {
	b, err := rec.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("write record: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var view map[string]any
	if err := dec.Decode(&view); err != nil {
		return nil, fmt.Errorf("write record: %w", err)
	}
	return view, nil
}
