// Command tlve parses tag-length-value structures and prints them in
// configurable formats, driven by an rc-style definition file.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsavi/tlve/internal/driver"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath    string
		structureName string
		printOverride string
		outputPath    string
		names         []string
		expressions   []string
		expressionAnd bool
		startLevel    int
		stopLevel     int
		debug         bool
		showVersion   bool
	)

	cmd := &cobra.Command{
		Use:           "tlve [FILE]...",
		Short:         "A program to parse tag-length-value structures and print them in different formats",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion()
				return nil
			}

			var nameList []string
			for _, n := range names {
				nameList = append(nameList, splitCommaList(n)...)
			}

			return driver.Run(driver.Options{
				ConfigPath:    configPath,
				StructureName: structureName,
				PrintOverride: printOverride,
				OutputPath:    outputPath,
				Names:         nameList,
				Expressions:   expressions,
				ExpressionAnd: expressionAnd,
				StartLevel:    startLevel,
				StopLevel:     stopLevel,
				Debug:         debug,
				Files:         args,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "configuration", "c", "", "read configuration from NAME instead of ~/.tlverc")
	flags.StringVarP(&structureName, "structure", "s", "", "use structure NAME to process the input data")
	flags.StringVarP(&printOverride, "print", "p", "", "use printing definition NAME to print the data")
	flags.StringVarP(&outputPath, "output", "o", "", "send output to NAME instead of standard output")
	flags.StringArrayVarP(&names, "name-list", "n", nil, "print only elements having name or tag in comma separated list LIST")
	flags.StringArrayVarP(&expressions, "expression", "e", nil, "print only elements for which the expression NAME=VALUE evaluates true")
	flags.BoolVarP(&expressionAnd, "and", "a", false, "all expressions must evaluate true")
	flags.IntVarP(&startLevel, "start-level", "l", 0, "first level in element hierarchy to be printed")
	flags.IntVarP(&stopLevel, "stop-level", "L", 0, "last level in element hierarchy to be printed")
	flags.BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	flags.BoolVarP(&showVersion, "version", "V", false, "output version information and exit")

	return cmd
}

func splitCommaList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printVersion() {
	fmt.Printf("tlve version %s (%s, %s)\n", version, buildHost, buildDate)
}
