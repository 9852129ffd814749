package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/projectdiscovery/bundler"
	"github.com/projectdiscovery/bundler/internal/runner"
	"github.com/projectdiscovery/gologger"
)

func main() {

	cliOpts := runner.ParseFlags()

	if cliOpts.ListSurfaces {
		config, err := cliOpts.LoadConfig()
		if err != nil {
			gologger.Fatal().Msgf("%v", err)
		}
		for _, name := range config.Names() {
			s, _ := config.Surface(name)
			gologger.Silent().Msgf("%v\t%v", name, s.Generators)
		}
		return
	}

	surface, err := cliOpts.LoadSurface()
	if err != nil {
		gologger.Fatal().Msgf("%v", err)
	}
	engineOpts, err := cliOpts.EngineOptions()
	if err != nil {
		gologger.Fatal().Msgf("%v", err)
	}
	engine, err := bundler.NewEngine(surface, nil, engineOpts)
	if err != nil {
		gologger.Fatal().Msgf("failed to build engine for %v got %v", cliOpts.Surface, err)
	}

	output := getOutputWriter(cliOpts.Output)
	defer closeOutput(output, cliOpts.Output)

	if len(cliOpts.Words) > 0 {
		checkWords(engine, cliOpts.Words, output)
		return
	}

	census, err := bundler.NewCensus(engine, &bundler.CensusOptions{
		PartsDir: cliOpts.PartsDir,
		Limit:    cliOpts.Limit,
	})
	if err != nil {
		gologger.Fatal().Msgf("%v", err)
	}

	if cliOpts.Estimate {
		gologger.Info().Msgf("Estimated census size (upper bound): %v bytes", census.EstimateBytes(cliOpts.Depth))
		return
	}

	bundler.MaxInMemoryDedupeSize = cliOpts.MaxMemory
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err = census.ExecuteWithWriter(ctx, cliOpts.Depth, output); err != nil {
		gologger.Error().Msgf("failed to write output got %v", err)
	}
}

// checkWords writes each word with its verdict and homology order
func checkWords(engine *bundler.Engine, words []string, output io.Writer) {
	for _, word := range words {
		valid, err := engine.ValidWordString(word)
		if err != nil {
			gologger.Warning().Msgf("skipping %v: %v", word, err)
			continue
		}
		line := fmt.Sprintf("%v,%v", word, valid)
		if w, err := engine.Parse(word); err == nil {
			if order, err := engine.HomologyOrder(w); err == nil {
				line += fmt.Sprintf(",%v", order)
			}
		}
		_, _ = output.Write([]byte(line + "\n"))
	}
}

// getOutputWriter returns the appropriate output writer
func getOutputWriter(outputPath string) io.Writer {
	if outputPath != "" {
		fs, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			gologger.Fatal().Msgf("failed to open output file %v got %v", outputPath, err)
		}
		return fs
	}
	return os.Stdout
}

// closeOutput closes the output writer if it's a file
func closeOutput(output io.Writer, outputPath string) {
	if outputPath != "" {
		if closer, ok := output.(io.Closer); ok {
			closer.Close()
		}
	}
}
