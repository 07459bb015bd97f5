// Command regextract runs the register-access extraction pipeline
// against a captured frame stream and a register map, emitting
// decoded transactions. It is a thin wiring layer — argument parsing,
// config loading, resolver/recognizer construction, and output
// writing — around the internal/pipeline core. Grounded on the
// teacher's cmd/samoyed-appserver entrypoint and its appserver.go
// pflag usage.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/MBarae/waveform-reg-access-extractor/internal/bus"
	"github.com/MBarae/waveform-reg-access-extractor/internal/config"
	"github.com/MBarae/waveform-reg-access-extractor/internal/decode"
	"github.com/MBarae/waveform-reg-access-extractor/internal/framesource"
	"github.com/MBarae/waveform-reg-access-extractor/internal/logging"
	"github.com/MBarae/waveform-reg-access-extractor/internal/model"
	"github.com/MBarae/waveform-reg-access-extractor/internal/output"
	"github.com/MBarae/waveform-reg-access-extractor/internal/pipeline"
	"github.com/MBarae/waveform-reg-access-extractor/internal/regmap"
)

const (
	exitOK           = 0
	exitConfigError  = 1
	exitMapSchemaErr = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("regextract", pflag.ContinueOnError)

	configPath := flags.StringP("config", "c", "", "Run configuration YAML file.")
	protocol := flags.StringP("protocol", "p", "", "Override the configured protocol name (AHB, APB).")
	help := flags.Bool("help", false, "Display help text.")

	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "regextract -c <config.yaml> [-p <protocol>]")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return exitConfigError
	}
	if *help || *configPath == "" {
		flags.Usage()
		return exitConfigError
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.ConfigFatal(err)
		return exitConfigError
	}
	if *protocol != "" {
		cfg.Protocol = *protocol
		if err := cfg.Validate(); err != nil {
			logging.ConfigFatal(err)
			return exitConfigError
		}
	}

	var resolver regmap.Resolver
	switch cfg.RegisterMapKind {
	case config.FormatIPXACT:
		resolver, err = regmap.LoadIPXACT(cfg.RegisterMapPath)
	case config.FormatYAML:
		resolver, err = regmap.LoadYAML(cfg.RegisterMapPath)
	}
	if err != nil {
		logging.Logger.Error("register map schema error", "err", err)
		return exitMapSchemaErr
	}

	recognizer, err := bus.New(cfg.Protocol, cfg.SignalMappingOf())
	if err != nil {
		logging.ConfigFatal(err)
		return exitConfigError
	}

	frameFile, err := os.Open(cfg.FrameSourcePath)
	if err != nil {
		logging.ConfigFatal(err)
		return exitConfigError
	}
	defer frameFile.Close()

	if err := requireSignals(recognizer, frameFile, cfg); err != nil {
		logging.ConfigFatal(err)
		return exitConfigError
	}
	if _, err := frameFile.Seek(0, 0); err != nil {
		logging.ConfigFatal(err)
		return exitConfigError
	}

	source := framesource.NewJSONL(frameFile)
	dec := decode.New(resolver)

	outFile := os.Stdout
	if cfg.OutputPath != "" {
		outFile, err = os.Create(cfg.OutputPath)
		if err != nil {
			logging.ConfigFatal(err)
			return exitConfigError
		}
		defer outFile.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := pipeline.Run(ctx, source, recognizer, dec)

	var transactions []model.DecodedTransaction
	var csvWriter *output.CSVWriter
	if cfg.OutputFormat == "csv" {
		csvWriter, err = output.NewCSVWriter(outFile)
		if err != nil {
			logging.ConfigFatal(err)
			return exitConfigError
		}
	}

	for r := range results {
		if r.Err != nil {
			logging.Logger.Warn("pipeline error", "err", r.Err)
			continue
		}
		if csvWriter != nil {
			if err := csvWriter.WriteTransaction(r.Transaction); err != nil {
				logging.Logger.Error("csv write failed", "err", err)
				return exitConfigError
			}
			continue
		}
		transactions = append(transactions, r.Transaction)
	}

	if csvWriter != nil {
		if err := csvWriter.Flush(); err != nil {
			logging.Logger.Error("csv flush failed", "err", err)
			return exitConfigError
		}
		return exitOK
	}

	if err := output.WriteJSON(outFile, transactions); err != nil {
		logging.Logger.Error("json write failed", "err", err)
		return exitConfigError
	}

	return exitOK
}

// requireSignals peeks at the frame source's first non-blank line to
// validate the recognizer's required signals are present before the
// pipeline starts, per spec.md §7's configuration-error class ("the
// pipeline does not start" on a missing required signal).
func requireSignals(recognizer bus.Recognizer, f *os.File, cfg config.Config) error {
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var first struct {
			Signals map[string]any `json:"signals"`
		}
		if err := json.Unmarshal([]byte(line), &first); err != nil {
			return fmt.Errorf("frame source schema error: %w", err)
		}
		present := make(map[string]struct{}, len(first.Signals))
		for name := range first.Signals {
			present[name] = struct{}{}
		}
		return bus.CheckRequiredSignals(recognizer, present, cfg.SignalMappingOf())
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return nil
}
