/*
Copyright The CloudNativePG Contributors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
The opctl command is the entrypoint of the operation-management control
plane: the "serve" subcommand runs the HTTP control plane itself, and the
remaining subcommands are a thin CLI client of that same HTTP API.
*/
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudnative-pg/operationmanagement/internal/obslog"
)

func main() {
	logFlags := &obslog.Flags{}

	cmd := &cobra.Command{
		Use:          "opctl [cmd]",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logFlags.ConfigureLogging()
		},
	}

	logFlags.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newOverviewCmd())
	cmd.AddCommand(newPromoteCmd())
	cmd.AddCommand(newDemoteAllCmd())

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
