// Command bnrgtool loads, inspects, and mutates record-stream save files.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	output  io.Writer
)

var rootCmd = &cobra.Command{
	Use:   "bnrgtool",
	Short: "Inspect and mutate record-stream save files",
	Long: `bnrgtool decodes the record-stream save format into an in-memory
object graph, lets you inspect or mutate it, and re-encodes it back to
disk.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		output = os.Stdout
		if verbose {
			log.SetFlags(log.Ltime | log.Lmicroseconds)
		} else {
			log.SetOutput(io.Discard)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", getEnvBool("BNRG_VERBOSE", false), "log decode/encode progress to stderr")

	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportSQLiteCmd)
}

// getEnv retrieves a string environment variable with a default fallback,
// used to seed flag defaults so an unset flag still picks up the process
// environment.
func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable, parsed with
// strconv.ParseBool; an unset or unparsable value gives the default.
func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
