package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/parcelworks/frontage-api/internal/dataset"
	"github.com/parcelworks/frontage-api/internal/frontage"
	"github.com/parcelworks/frontage-api/internal/server"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <parcel-id>",
	Short: "Run the multi-tier frontage analysis for one parcel",
	Long:  "Evaluates all confidence tiers plus the nearby-roads inventory and prints the same JSON payload the /analyze-parcel endpoint returns.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := dataset.Load(cmd.Context(), cfg.Data.ParcelsPath, cfg.Data.StreetsPath)
		if err != nil {
			return err
		}

		rawID := args[0]
		parcel, ok := store.FindParcel(dataset.NormalizeParcelID(rawID))
		if !ok {
			printer().Fprintf(os.Stderr, "parcel %s (normalized %s) not found among %d parcels\n",
				rawID, dataset.NormalizeParcelID(rawID), store.ParcelCount())
			os.Exit(1)
		}

		result, err := server.BuildAnalysis(rawID, parcel, store.Streets(), frontage.AnalyzeOptions{
			NearbyRadius: cfg.Frontage.NearbyRadiusFt,
			NearbyLimit:  cfg.Frontage.NearbyLimit,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
