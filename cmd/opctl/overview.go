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
	"sort"

	"github.com/cheynewallace/tabby"
	"github.com/spf13/cobra"

	"github.com/cloudnative-pg/operationmanagement/internal/topology"
)

func newOverviewCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "print the cluster-wide verdict and per-standby replication gap",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(addrFromEnv(addr))
			overview, err := client.Overview(cmd.Context())
			if err != nil {
				return err
			}
			printOverview(overview)
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "control plane address (default: $OPCTL_ADDR or http://localhost:5001)")
	return cmd
}

func printOverview(overview topology.Overview) {
	primary := "none"
	if overview.PrimaryNode != nil {
		primary = *overview.PrimaryNode
	}
	fmt.Println("Cluster status:", colorClusterStatus(overview.ClusterStatus))
	fmt.Println("Primary node:  ", primary)
	fmt.Println()

	names := make([]string, 0, len(overview.Nodes))
	for name := range overview.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	t := tabby.New()
	t.AddHeader("NODE", "ROLE", "CONNECTED", "REPLICATION GAP (bytes)")
	for _, name := range names {
		n := overview.Nodes[name]
		t.AddLine(name, colorRole(n.Role), colorBool(n.Connected), printReplicationGap(n.ReplicationGap))
	}
	t.Print()
}
