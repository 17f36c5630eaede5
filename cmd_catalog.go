package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCatalogCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the categories, cities and districts the bot offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}

			var b strings.Builder
			b.WriteString("categories:\n")
			for _, c := range cat.Categories() {
				fmt.Fprintf(&b, "  %-10s %s\n", c.ID, c.Label)
			}
			b.WriteString("cities:\n")
			for _, city := range cat.Cities() {
				fmt.Fprintf(&b, "  %-10s %s\n", city.ID, city.Label)
				for _, d := range cat.Districts(city.ID) {
					fmt.Fprintf(&b, "    %-20s %s\n", d.ID, d.Label)
				}
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), b.String())
			return err
		},
	}
}
