package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/relief-network/reliefd/internal/domain"
)

func init() {
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a small demo disaster into the store",
	Long: `Insert a demo disaster with two camps, inventory rows, and a few
pending donations so the shortage and allocation commands have something to
work with. Safe to run against an empty database only.`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	rt, close, err := openRuntime()
	if err != nil {
		return err
	}
	defer close()

	ctx := cmd.Context()
	disasterID, err := rt.store.AddDisaster(ctx, domain.Disaster{
		Name:     "Kosi River Flood",
		Type:     "flood",
		Location: "Saharsa District",
		Severity: "severe",
		Status:   "active",
	})
	if err != nil {
		return fmt.Errorf("seed disaster: %w", err)
	}

	camps := []domain.Camp{
		{Name: "Riverside Camp", DisasterID: disasterID, Location: "Saharsa North", Capacity: 500, Occupancy: 430, Status: "active"},
		{Name: "Hillside Camp", DisasterID: disasterID, Location: "Saharsa East", Capacity: 300, Occupancy: 180, Status: "active"},
	}
	campIDs := make([]int64, 0, len(camps))
	for _, c := range camps {
		id, err := rt.store.AddCamp(ctx, c)
		if err != nil {
			return fmt.Errorf("seed camp %q: %w", c.Name, err)
		}
		campIDs = append(campIDs, id)
	}

	// campID, resourceTypeID, available, needed. Type IDs follow the
	// built-in resource type seed: 1 water, 2 food, 3 medicine.
	inventory := [][4]int64{
		{campIDs[0], 1, 200, 900},
		{campIDs[0], 2, 150, 430},
		{campIDs[0], 3, 0, 40},
		{campIDs[1], 1, 350, 400},
		{campIDs[1], 2, 90, 180},
	}
	for _, row := range inventory {
		if _, err := rt.store.AddResource(ctx, row[0], row[1], row[2], row[3]); err != nil {
			return fmt.Errorf("seed inventory: %w", err)
		}
	}

	donations := []domain.Donation{
		{Donor: "Bihar Relief Trust", DonorContact: "contact@brt.example", ResourceTypeID: 1, Quantity: 600, Status: domain.StatusPending, DonatedAt: time.Now()},
		{Donor: "Aid Without Borders", DonorContact: "ops@awb.example", ResourceTypeID: 2, Quantity: 250, Status: domain.StatusPending, DonatedAt: time.Now()},
		{Donor: "Metro Hospital Network", DonorContact: "supply@mhn.example", ResourceTypeID: 3, Quantity: 25, Status: domain.StatusPending, DonatedAt: time.Now()},
	}
	for _, d := range donations {
		if _, err := rt.store.AddDonation(ctx, d); err != nil {
			return fmt.Errorf("seed donation from %q: %w", d.Donor, err)
		}
	}

	fmt.Printf("Seeded disaster %d with %d camps, %d inventory rows, %d donations.\n",
		disasterID, len(campIDs), len(inventory), len(donations))
	return nil
}
