package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	shortagesCmd.Flags().BoolVar(&shortagesCritical, "critical", false, "only High and Critical shortages")
	shortagesCmd.Flags().IntVar(&shortagesTop, "top", 0, "limit to the N largest shortages")
	rootCmd.AddCommand(shortagesCmd)
	rootCmd.AddCommand(statsCmd)
}

var (
	shortagesCritical bool
	shortagesTop      int
)

// ─── reliefd shortages ──────────────────────────────────────────────────────

var shortagesCmd = &cobra.Command{
	Use:   "shortages",
	Short: "List camps whose needs exceed available stock",
	RunE:  runShortages,
}

func runShortages(cmd *cobra.Command, args []string) error {
	rt, close, err := openRuntime()
	if err != nil {
		return err
	}
	defer close()

	calc := rt.engine.Calculator()
	ctx := cmd.Context()

	shortages, err := calc.ComputeShortages(ctx)
	if err != nil {
		return err
	}
	switch {
	case shortagesTop > 0:
		shortages, err = calc.TopShortages(ctx, shortagesTop)
	case shortagesCritical:
		shortages, err = calc.CriticalShortages(ctx)
	}
	if err != nil {
		return err
	}

	if len(shortages) == 0 {
		fmt.Fprintln(os.Stdout, "No shortages.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CAMP\tRESOURCE\tAVAILABLE\tNEEDED\tSHORT\tSEVERITY\tRATIO")
	for _, s := range shortages {
		ratio := "unbounded"
		if !s.Ratio.Unbounded {
			ratio = fmt.Sprintf("%.2f", s.Ratio.Value)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			s.Resource.CampName, s.Resource.TypeName,
			s.Resource.Available, s.Resource.Needed,
			s.Amount, s.Severity, ratio)
	}
	return w.Flush()
}

// ─── reliefd stats ──────────────────────────────────────────────────────────

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show resource, donation, and dashboard summaries",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	rt, close, err := openRuntime()
	if err != nil {
		return err
	}
	defer close()

	ctx := cmd.Context()
	rs := rt.stats.ResourceStatistics(ctx)
	ds := rt.stats.DonationStatistics(ctx)
	dash := rt.stats.Dashboard(ctx)

	fmt.Printf("Active disasters: %d  Active camps: %d  Occupancy: %d  Open shortages: %d\n",
		dash.ActiveDisasters, dash.ActiveCamps, dash.TotalOccupancy, dash.ShortageCount)
	fmt.Printf("Resource types tracked: %d\n", rs.TotalTypes)
	fmt.Printf("Shortages: %d total, %d critical\n", rs.TotalShortages, rs.CriticalShortages)

	if len(rs.TopShortages) > 0 {
		fmt.Println("\nLargest shortages:")
		for _, s := range rs.TopShortages {
			fmt.Printf("  %s at %s: short %d units (%s)\n",
				s.Resource.TypeName, s.Resource.CampName, s.Amount, s.Severity)
		}
	}

	fmt.Printf("\nDonations: %d totalling %d units\n", ds.TotalDonations, ds.TotalQuantity)
	for status, n := range ds.ByStatus {
		fmt.Printf("  %s: %d\n", status, n)
	}
	if len(ds.TopDonors) > 0 {
		fmt.Println("Top donors:")
		for _, d := range ds.TopDonors {
			fmt.Printf("  %s: %d units across %d donations\n", d.Donor, d.Quantity, d.Count)
		}
	}
	return nil
}
