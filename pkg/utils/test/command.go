package testutils

import (
	"bytes"

	"github.com/spf13/cobra"
)

// RunCommand executes sub under a parent carrying the global --debug and
// --config-dir flags and returns what it printed.
func RunCommand(sub *cobra.Command, args ...string) (string, error) {
	root := &cobra.Command{Use: "figsearch", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().BoolP("debug", "d", false, "")
	root.PersistentFlags().String("config-dir", "", "")
	root.AddCommand(sub)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{sub.Name()}, args...))

	err := root.Execute()
	return out.String(), err
}
