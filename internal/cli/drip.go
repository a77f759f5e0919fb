package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dripSiteID string

var dripCmd = &cobra.Command{
	Use:   "drip",
	Short: "Promote the next ghost pages of a site into its sitemap",
	Long: `Promote ghost hub pages and articles of a site to indexed.

At most the site's drip rate of articles is indexed per run. When sitemap
publishing is enabled the regenerated sitemap is uploaded to object storage.

Examples:
  factoryctl drip --site site-1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := application.Dripper.Drip(cmd.Context(), dripSiteID)
		if err != nil {
			return fmt.Errorf("drip: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Site %s: indexed %d articles, %d hubs\n", res.SiteID, res.Indexed, res.HubsIndexed)
		if res.SitemapURL != "" {
			fmt.Fprintf(out, "Sitemap: %s\n", res.SitemapURL)
		}
		return nil
	},
}

func init() {
	dripCmd.Flags().StringVarP(&dripSiteID, "site", "s", "", "site id")
	_ = dripCmd.MarkFlagRequired("site")
}
