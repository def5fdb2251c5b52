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

func newDemoteAllCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "demote-all",
		Short: "demote every reachable backup node to standby",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(addrFromEnv(addr))
			result, err := client.DemoteAll(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println(aurora.Green(result.Message))
			for _, d := range result.Demoted {
				fmt.Println(" ", aurora.Green("demoted"), d)
			}
			for _, w := range result.Warnings {
				fmt.Println(aurora.Yellow("warning:"), w)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "control plane address (default: $OPCTL_ADDR or http://localhost:5001)")
	return cmd
}
