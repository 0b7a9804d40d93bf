package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/joho/godotenv"

	"github.com/reoring/oscconnect/config"
)

var errInvalidConfig = errors.New("invalid configuration")

// loadConfig loads the optional .env file first so that ${VAR} references in
// the YAML can see it.
func loadConfig(path, envFile string) (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}
	return config.Load(path)
}

func validateCmd(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	var cfgPath, envFile string
	fs.StringVar(&cfgPath, "config", "", "path to the YAML config")
	fs.StringVar(&envFile, "env", "", "optional .env file")
	if err := fs.Parse(args); err != nil || cfgPath == "" {
		return errUsage
	}
	cfg, err := loadConfig(cfgPath, envFile)
	if err != nil {
		return err
	}
	c := &config.Collector{}
	cfg.Validate(c)
	for _, f := range c.Failures() {
		fmt.Fprintln(out, f.Error())
	}
	if len(c.Failures()) > 0 {
		return fmt.Errorf("%w: %d problem(s)", errInvalidConfig, len(c.Failures()))
	}
	fmt.Fprintln(out, "ok")
	return nil
}
