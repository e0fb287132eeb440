package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/arvek/bnrg/app"
	"github.com/arvek/bnrg/codec"
	"github.com/arvek/bnrg/internal/fileio"
)

var (
	loadUpgrades []string
	loadStarting []string
)

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Decode a save file, optionally append upgrades, and write <file>.new",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoad,
}

func init() {
	loadCmd.Flags().StringSliceVar(&loadUpgrades, "upgrade", nil, "upgrade name to ensure present (repeatable)")
	loadCmd.Flags().StringSliceVar(&loadStarting, "starting", nil, "among --upgrade names, those eligible to be flagged already-unlocked (repeatable)")
}

func runLoad(cmd *cobra.Command, args []string) error {
	path := args[0]

	mapped, err := fileio.Open(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	defer mapped.Close()

	log.Printf("decoding %d bytes from %s", len(mapped.Bytes()), path)
	graph, err := codec.Decode(mapped.Bytes())
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	log.Printf("decoded %d records, %d class types", len(graph.Records), len(graph.ClassTypes))

	if len(loadUpgrades) > 0 {
		starting := make(map[string]bool, len(loadStarting))
		for _, name := range loadStarting {
			starting[name] = true
		}
		requests := make([]app.UpgradeRequest, len(loadUpgrades))
		for i, name := range loadUpgrades {
			requests[i] = app.UpgradeRequest{Name: name, StartingEligible: starting[name]}
		}
		report, err := app.ApplyUpgrades(graph, requests)
		if err != nil {
			return fmt.Errorf("applying upgrades: %w", err)
		}
		log.Printf("added %d upgrades, %d already present", len(report.Added), len(report.AlreadyPresent))
		fmt.Fprintf(output, "added: %v\nalready present: %v\n", report.Added, report.AlreadyPresent)
	}

	encoded, err := codec.Encode(graph)
	if err != nil {
		return fmt.Errorf("encoding: %w", err)
	}

	newPath := path + ".new"
	if err := os.WriteFile(newPath, encoded, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", newPath, err)
	}
	fmt.Fprintf(output, "wrote %s (%d bytes)\n", newPath, len(encoded))
	return nil
}
