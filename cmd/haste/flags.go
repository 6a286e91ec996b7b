package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func init() {
	cobra.OnInitialize(func() {
		autoBind(rootCmd, "HASTE")
	})
}

// autoBind lets every flag be set from the environment, eg.
// HASTE_SIMULATE_CMD_CAPACITY for `haste simulate --capacity`.
func autoBind(root *cobra.Command, prefix string) {
	recurseCommands(root, prefix, nil)
}

func recurseCommands(root *cobra.Command, prefix string, segments []string) {
	var segmentPrefix string
	if len(segments) > 0 {
		segmentPrefix = strings.ToUpper(strings.Join(segments, "_")) + "_"
	}

	root.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		newName := strings.Replace(strings.ToUpper(f.Name), "-", "_", -1)
		varName := prefix + "_" + segmentPrefix + "GLOBAL_" + newName
		if val := os.Getenv(varName); val != "" {
			f.Usage += " [LOADED FROM ENV]"
			if !f.Changed {
				f.Value.Set(val)
			}
		}
	})

	root.Flags().VisitAll(func(f *pflag.Flag) {
		newName := strings.Replace(strings.ToUpper(f.Name), "-", "_", -1)
		varName := prefix + "_" + segmentPrefix + "CMD_" + newName
		if val := os.Getenv(varName); val != "" {
			f.Usage += " [LOADED FROM ENV]"
			if !f.Changed {
				f.Value.Set(val)
			}
		}
	})

	for _, cmd := range root.Commands() {
		recurseCommands(cmd, prefix, append(segments, cmd.Name()))
	}
}

func mustGetString(cmd *cobra.Command, flagName string) string {
	val, err := cmd.Flags().GetString(flagName)
	if err != nil {
		panic(fmt.Sprintf("flags: couldn't find flag %q", flagName))
	}
	return val
}

func mustGetInt(cmd *cobra.Command, flagName string) int {
	val, err := cmd.Flags().GetInt(flagName)
	if err != nil {
		panic(fmt.Sprintf("flags: couldn't find flag %q", flagName))
	}
	return val
}

func mustGetUint64(cmd *cobra.Command, flagName string) uint64 {
	val, err := cmd.Flags().GetUint64(flagName)
	if err != nil {
		panic(fmt.Sprintf("flags: couldn't find flag %q", flagName))
	}
	return val
}

func mustGetFloat64(cmd *cobra.Command, flagName string) float64 {
	val, err := cmd.Flags().GetFloat64(flagName)
	if err != nil {
		panic(fmt.Sprintf("flags: couldn't find flag %q", flagName))
	}
	return val
}

func mustGetDuration(cmd *cobra.Command, flagName string) time.Duration {
	val, err := cmd.Flags().GetDuration(flagName)
	if err != nil {
		panic(fmt.Sprintf("flags: couldn't find flag %q", flagName))
	}
	return val
}
