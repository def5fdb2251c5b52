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

package main

import (
	"fmt"

	"github.com/logrusorgru/aurora/v3"
	"github.com/spf13/cobra"
)

func newPromoteCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "promote <node>",
		Short: "promote a backup node to primary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(addrFromEnv(addr))
			result, err := client.Promote(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Println(aurora.Green(result.Message))
			for _, w := range result.Warnings {
				fmt.Println(aurora.Yellow("warning:"), w)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "control plane address (default: $OPCTL_ADDR or http://localhost:5001)")
	return cmd
}
