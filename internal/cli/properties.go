package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/draze/draze-cli/internal/derive"
	"github.com/draze/draze-cli/internal/marketplace"
	"github.com/draze/draze-cli/internal/session"
)

var propertyColumns = []column[marketplace.Property]{
	{"id", func(p marketplace.Property) string { return string(p.ID) }},
	{"name", func(p marketplace.Property) string { return p.Name }},
	{"city", func(p marketplace.Property) string { return p.City }},
	{"rooms", func(p marketplace.Property) string { return strconv.Itoa(p.TotalRooms) }},
	{"beds", func(p marketplace.Property) string { return strconv.Itoa(p.TotalBeds) }},
	{"price", func(p marketplace.Property) string { return money(p.Price) }},
}

var propertiesCmd = &cobra.Command{
	Use:     "properties",
	Aliases: []string{"property"},
	Short:   "Browse properties",
}

var (
	propertiesListOpts listOptions
	listingsOpts       listOptions
)

var propertiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the landlord's properties",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(session.RoleLandlord)
		if err != nil {
			return err
		}
		_, err = runList(cmd, e, marketplace.PropertiesEndpoint, &propertiesListOpts,
			marketplace.SearchProperties, "properties", propertyColumns)
		return err
	},
}

var propertiesListingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "List the seller's property listings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(session.RoleSeller)
		if err != nil {
			return err
		}
		_, err = runList(cmd, e, marketplace.SellerPropertiesEndpoint, &listingsOpts,
			marketplace.SearchProperties, "listings", propertyColumns)
		return err
	},
}

var carouselIndex int

var propertiesImagesCmd = &cobra.Command{
	Use:   "images <property-id>",
	Short: "Show a property's images one at a time",
	Long: `Show one image URL of a property. --index steps through the images and wraps
around at either end, so -1 is the last image.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(session.RoleLandlord)
		if err != nil {
			return err
		}
		props, err := e.client.Properties(cmd.Context())
		if err != nil {
			return err
		}
		for _, p := range props {
			if string(p.ID) != args[0] {
				continue
			}
			if len(p.Images) == 0 {
				printMessage(cmd.OutOrStdout(), p.Name+" has no images", p.Images)
				return nil
			}
			i := imageIndex(carouselIndex, len(p.Images))
			printMessage(cmd.OutOrStdout(),
				fmt.Sprintf("%d/%d %s", i+1, len(p.Images), p.Images[i]),
				map[string]any{"index": i, "url": p.Images[i]})
			return nil
		}
		return fmt.Errorf("property %s not found", args[0])
	},
}

func init() {
	rootCmd.AddCommand(propertiesCmd)
	propertiesCmd.AddCommand(propertiesListCmd, propertiesListingsCmd, propertiesImagesCmd)

	propertiesListOpts.bind(propertiesListCmd, true)
	listingsOpts.bind(propertiesListingsCmd, true)
	propertiesImagesCmd.Flags().IntVar(&carouselIndex, "index", 0, "Image position, negative counts from the end")
}

// imageIndex walks steps positions from the first image, wrapping at both ends.
func imageIndex(steps, n int) int {
	i := 0
	for steps %= n; steps > 0; steps-- {
		i = derive.Next(i, n)
	}
	for ; steps < 0; steps++ {
		i = derive.Prev(i, n)
	}
	return i
}
