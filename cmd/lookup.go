package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/parcelworks/frontage-api/internal/dataset"
	"github.com/parcelworks/frontage-api/internal/server"
)

var (
	lookupTolerance      float64
	lookupIncludePrivate bool
	lookupJSON           bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <parcel-id>",
	Short: "Resolve a single parcel's road frontage",
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

		tolerance := lookupTolerance
		if tolerance < 0 {
			tolerance = cfg.Frontage.DefaultToleranceFt
		}

		result, err := server.BuildFrontage(rawID, parcel, store.Streets(), tolerance, lookupIncludePrivate)
		if err != nil {
			return err
		}

		if lookupJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		p := printer()
		p.Printf("Parcel %s (normalized %s)\n", result.ParcelID, result.NormalizedID)
		if result.Address != "" {
			p.Printf("Address: %s\n", result.Address)
		}
		p.Printf("Total frontage: %.2f ft across %d road(s) at %.1f ft tolerance\n",
			result.TotalFrontageFt, result.RoadCount, result.ToleranceFt)
		for _, road := range result.Roads {
			p.Printf("  %-30s %10.2f ft  %s\n", road.StreetName, road.FrontageFt, road.RoadType)
		}
		return nil
	},
}

func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

func init() {
	lookupCmd.Flags().Float64Var(&lookupTolerance, "tolerance", -1, "boundary tolerance in feet (default from config)")
	lookupCmd.Flags().BoolVar(&lookupIncludePrivate, "include-private", false, "include private and unclassified roads")
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "emit JSON instead of human-readable output")
	rootCmd.AddCommand(lookupCmd)
}
