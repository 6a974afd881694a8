// Package cmd - menu command
package cmd

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"catering-finance/core/menu"
)

var (
	selectionsFile string
	catalogFile    string
	childDiscount  string
	premiumAddOn   string
)

// menuCmd prices menu selections without computing the full financials
var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Price guests' menu selections against a catalog",
	Long: `Aggregate guests' protein and side selections into the subtotal and
food cost overrides the calculate command applies with --menu.

Catalog ids that are selected but missing are priced at zero and listed.

Examples:
  catering-finance menu --selections guests.json --catalog catalog.json
  catering-finance menu --selections guests.json --catalog catalog.json --child-discount 50`,
	Args: cobra.NoArgs,
	RunE: runMenu,
}

func init() {
	menuCmd.Flags().StringVarP(&selectionsFile, "selections", "s", "", "guest selections JSON file")
	menuCmd.Flags().StringVarP(&catalogFile, "catalog", "c", "", "menu catalog JSON file")
	menuCmd.Flags().StringVar(&childDiscount, "child-discount", "0", "child discount percent")
	menuCmd.Flags().StringVar(&premiumAddOn, "premium-add-on", "0", "premium add-on per guest")
	menuCmd.MarkFlagRequired("selections")
	menuCmd.MarkFlagRequired("catalog")
}

func runMenu(cmd *cobra.Command, args []string) error {
	var selections []menu.GuestSelection
	if err := readJSONFile(selectionsFile, &selections); err != nil {
		return err
	}
	var catalog []menu.CatalogItem
	if err := readJSONFile(catalogFile, &catalog); err != nil {
		return err
	}

	discount, err := decimal.NewFromString(childDiscount)
	if err != nil {
		return err
	}
	addOn, err := decimal.NewFromString(premiumAddOn)
	if err != nil {
		return err
	}

	res := menu.Aggregate(selections, catalog, menu.Params{
		ChildDiscountPercent: discount,
		PremiumAddOnPerGuest: addOn,
		SideItemIDs:          sideItemIDs(),
	})

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
