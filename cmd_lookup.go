package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"roofbot/internal/catalog"
	"roofbot/internal/dialogue"
	"roofbot/internal/models"
)

type lookupFlags struct {
	category string
	city     string
	district string
	days     int
	details  []string
}

func newLookupCmd(load configLoader) *cobra.Command {
	var flags lookupFlags

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Fetch one estimate from the price service",
		Long: `Runs a single price lookup outside Telegram. Category, city and district
accept either catalog ids or labels; details use the same "key:value" lines the
bot accepts.

Example:
  roofbot lookup --category Apartment --city tehran --district punak --days 45 --detail "اتاق:3" --detail پارکینگ`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg, os.Stderr)
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			f, ignored, err := flags.filter(cat)
			if err != nil {
				return err
			}
			for _, line := range ignored {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: detail %q ignored for category %s\n", line, f.Category.ID)
			}

			gateway, cache, err := newGateway(cfg, log)
			if err != nil {
				return err
			}
			if cache != nil {
				defer cache.Close()
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Pricing.LookupTimeout)
			defer cancel()
			result, err := gateway.Lookup(ctx, f)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), result)
			return err
		},
	}

	cmd.Flags().StringVar(&flags.category, "category", "", "category id or label")
	cmd.Flags().StringVar(&flags.city, "city", "", "city id or label")
	cmd.Flags().StringVar(&flags.district, "district", "", "district id or label")
	cmd.Flags().IntVar(&flags.days, "days", 0, fmt.Sprintf("number of days (%d-%d)", dialogue.MinDays, dialogue.MaxDays))
	cmd.Flags().StringArrayVar(&flags.details, "detail", nil, "property detail line, repeatable")
	for _, name := range []string{"category", "city", "district", "days"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

// filter resolves the flags against the catalog the same way the bot does.
// Detail lines the category does not recognize are returned as ignored.
func (l lookupFlags) filter(cat *catalog.Catalog) (models.Filter, []string, error) {
	var f models.Filter

	category, ok := findCategory(cat, l.category)
	if !ok {
		return f, nil, fmt.Errorf("unknown category %q", l.category)
	}
	city, ok := findOption(cat.Cities(), l.city)
	if !ok {
		city, ok = cat.CityByLabel(l.city)
	}
	if !ok {
		return f, nil, fmt.Errorf("unknown city %q", l.city)
	}
	district, ok := findOption(cat.Districts(city.ID), l.district)
	if !ok {
		district, ok = cat.MatchDistrict(city.ID, l.district)
	}
	if !ok {
		return f, nil, fmt.Errorf("unknown district %q in %s", l.district, city.ID)
	}
	if l.days < dialogue.MinDays || l.days > dialogue.MaxDays {
		return f, nil, fmt.Errorf("days must be between %d and %d", dialogue.MinDays, dialogue.MaxDays)
	}

	f.Category, f.City, f.District, f.Days = category, city, district, l.days
	if len(l.details) == 0 {
		return f, nil, nil
	}
	if !category.ID.HasDetails() {
		return f, l.details, nil
	}
	var ignored []string
	f.Details, ignored = dialogue.ParseDetails(category.ID, strings.Join(l.details, "\n"))
	return f, ignored, nil
}

func findCategory(cat *catalog.Catalog, s string) (models.Category, bool) {
	for _, c := range cat.Categories() {
		if strings.EqualFold(string(c.ID), s) {
			return c, true
		}
	}
	return cat.CategoryByLabel(s)
}

func findOption(opts []models.Option, id string) (models.Option, bool) {
	for _, o := range opts {
		if o.ID == id {
			return o, true
		}
	}
	return models.Option{}, false
}
