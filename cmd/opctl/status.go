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
	"github.com/logrusorgru/aurora/v3"
	"github.com/spf13/cobra"

	"github.com/cloudnative-pg/operationmanagement/internal/topology"
)

func newStatusCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "print the reachability and role of every known node",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(addrFromEnv(addr))
			status, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}
			printStatus(status)
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "control plane address (default: $OPCTL_ADDR or http://localhost:5001)")
	return cmd
}

func printStatus(status topology.Status) {
	names := make([]string, 0, len(status.Nodes))
	for name := range status.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	t := tabby.New()
	t.AddHeader("NODE", "CONTAINER", "PORT", "CONNECTED", "ROLE")
	for _, name := range names {
		n := status.Nodes[name]
		t.AddLine(name, n.Container, n.Port, colorBool(n.Connected), colorRole(n.Role))
	}
	t.Print()
}

func colorBool(b bool) string {
	if b {
		return aurora.Green("yes").String()
	}
	return aurora.Red("no").String()
}

func colorRole(r topology.Role) string {
	switch r {
	case topology.RolePrimary:
		return aurora.Green(r).String()
	case topology.RoleStandby:
		return aurora.Yellow(r).String()
	default:
		return aurora.Red(r).String()
	}
}

func colorClusterStatus(s topology.ClusterStatus) string {
	switch s {
	case topology.Healthy:
		return aurora.Green(s).String()
	case topology.Degraded:
		return aurora.Yellow(s).String()
	default:
		return aurora.Red(s).String()
	}
}

func printReplicationGap(g *topology.ReplicationGap) string {
	if g == nil {
		return "-"
	}
	return fmt.Sprintf("%d", g.GapBytes)
}
