// Command openfield compares outdoor thermal comfort mitigations on an open
// ground plane.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "openfield",
		Short: "Open-field UTCI mitigation comparison",
		Long: `Simulates the ground surface temperature of an open field with EnergyPlus,
combines it with Radiance solar irradiance into mean radiant temperature, and
computes the Universal Thermal Climate Index for a matrix of mitigation
scenarios. Settings come from environment variables.`,
		SilenceUsage: true,
	}
	root.AddCommand(newCompareCmd(), newSurfaceCmd(), newESOCmd())
	return root
}
