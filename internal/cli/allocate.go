package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(allocateCmd)
	rootCmd.AddCommand(autoAllocateCmd)
}

// ─── reliefd allocate ───────────────────────────────────────────────────────

var allocateCmd = &cobra.Command{
	Use:   "allocate DONATION_ID CAMP_ID QUANTITY",
	Short: "Allocate part of a donation to one camp",
	Long: `Allocate QUANTITY units of a donation to a camp. The quantity must
not exceed the donation's remaining (unallocated) amount; no partial
allocation is performed on rejection.`,
	Args: cobra.ExactArgs(3),
	RunE: runAllocate,
}

func runAllocate(cmd *cobra.Command, args []string) error {
	var ids [3]int64
	for i, arg := range args {
		v, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("argument %q is not an integer", arg)
		}
		ids[i] = v
	}

	rt, close, err := openRuntime()
	if err != nil {
		return err
	}
	defer close()

	result, err := rt.engine.AllocateDonationToCamp(cmd.Context(), ids[0], ids[1], ids[2])
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, result.Message)
	return nil
}

// ─── reliefd auto-allocate ──────────────────────────────────────────────────

var autoAllocateCmd = &cobra.Command{
	Use:   "auto-allocate",
	Short: "Match all pending donations against camp shortages",
	Long: `Run the greedy batch matcher: every pending donation is allocated
to the camps with the greatest outstanding need for its resource type,
first-registered-first-served. Re-running against an unchanged state is a
no-op.`,
	RunE: runAutoAllocate,
}

func runAutoAllocate(cmd *cobra.Command, args []string) error {
	rt, close, err := openRuntime()
	if err != nil {
		return err
	}
	defer close()

	result, err := rt.engine.AutoAllocate(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, result.Message)
	return nil
}
