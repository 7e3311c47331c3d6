// Command dagwood loads a YAML workflow configuration, binds each
// processor spec to a concrete implementation via registry.go, and runs
// the graph to completion, printing a small result table.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ciroque/the-dagwood"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to a dagwood workflow config")
	payload := flag.String("payload", "hello world", "initial payload text")
	flag.Parse()

	if err := run(*configPath, *payload); err != nil {
		fmt.Fprintln(os.Stderr, "dagwood:", err)
		os.Exit(1)
	}
}

func run(configPath, payload string) error {
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	var cfg dagwood.Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	if err := dagwood.Validate(cfg.Processors); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	graph := dagwood.NewGraph(cfg.Processors)

	processors, err := buildProcessorMap(cfg.Processors)
	if err != nil {
		return err
	}

	engine := dagwood.NewEngine(graph, processors,
		dagwood.WithMaxConcurrency(cfg.ExecutorOptions.MaxConcurrency),
	)

	results, summary, runErr := engine.Execute(context.Background(), cfg.ResolvedStrategy(), cfg.ResolvedFailureStrategy(),
		dagwood.ProcessorRequest{Payload: []byte(payload)},
	)

	printResults(results)
	fmt.Printf("\n%d total, %d succeeded, %d failed, %d blocked, %s\n",
		summary.Total, summary.Succeeded, summary.Failed, summary.Blocked, summary.Duration)

	if runErr != nil {
		return runErr
	}
	return nil
}

func printResults(results map[dagwood.ProcessorID]dagwood.ProcessorResponse) {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	for _, id := range ids {
		resp := results[dagwood.ProcessorID(id)]
		if resp.Outcome.Successful() {
			fmt.Printf("%-16s OK   %s\n", id, string(resp.Outcome.NextPayload))
		} else {
			fmt.Printf("%-16s FAIL %s\n", id, resp.Outcome.Err.Message)
		}
	}
}
