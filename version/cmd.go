package version

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// CommandVersion returns the version command of landerd.
func CommandVersion(binaryName string) *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   fmt.Sprintf("Print the %s version.", binaryName),
		Aliases: []string{"v"},
		Example: fmt.Sprintf("%s version", binaryName),
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			v := Version()
			if v == "" {
				v = "main"
			}
			commit, ts := CommitInfo()

			var sb strings.Builder
			sb.WriteString("Version:       " + v + "\n")
			sb.WriteString("Git Commit:    " + commit + "\n")
			sb.WriteString("Git Timestamp: " + ts + "\n")

			cmd.Print(sb.String())
		},
	}
}
