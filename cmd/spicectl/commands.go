package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/spicebooks/internal/archive"
	"github.com/Simplici0/spicebooks/internal/costing"
	"github.com/Simplici0/spicebooks/internal/export"
	"github.com/Simplici0/spicebooks/internal/input"
	"github.com/Simplici0/spicebooks/internal/ledger"
	"github.com/Simplici0/spicebooks/internal/migrations"
	"github.com/Simplici0/spicebooks/internal/scheduler"
	"github.com/Simplici0/spicebooks/internal/seed"
)

func newMigrateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.close()

			version, err := migrations.Version(cmd.Context(), a.database)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database %s at version %d\n", a.cfg.DBPath, version)
			return nil
		},
	}
}

func newSeedCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the starter ingredient catalog and sample recipe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.close()

			stats, err := seed.Run(cmd.Context(), a.database)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seed complete: %d inserts\n", stats.Inserts)
			return nil
		},
	}
}

func newCostCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cost <recipe-id>",
		Short: "Print the cost breakdown of a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := input.ParseID(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.books().CostRecipe(cmd.Context(), id)
			if err != nil {
				return err
			}
			printBreakdown(cmd.OutOrStdout(), res.Value)
			printWarnings(cmd.ErrOrStderr(), res.Warnings)
			return nil
		},
	}
}

func newIngredientCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingredient",
		Short: "Add master ingredients or change their price per kg",
	}

	add := &cobra.Command{
		Use:   "add <name> <price-per-kg>",
		Short: "Add an ingredient to the master catalog",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := input.ParseNonNegativeFloat(args[1], "price per kg")
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.books().AddIngredient(cmd.Context(), args[0], price)
			if err != nil {
				return err
			}
			if !res.Value.Added {
				return fmt.Errorf("ingredient %q already exists", res.Value.Ingredient.Name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s at %.2f/kg\n", res.Value.Ingredient.Name, res.Value.Ingredient.PricePerKg)
			printWarnings(cmd.ErrOrStderr(), res.Warnings)
			return nil
		},
	}

	price := &cobra.Command{
		Use:   "price <name> <price-per-kg>",
		Short: "Change the price per kg of an existing ingredient (exact name)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := input.ParseNonNegativeFloat(args[1], "price per kg")
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.books().UpdateIngredientPrice(cmd.Context(), args[0], value)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now %.2f/kg\n", res.Value.Name, res.Value.PricePerKg)
			printWarnings(cmd.ErrOrStderr(), res.Warnings)
			return nil
		},
	}

	cmd.AddCommand(add, price)
	return cmd
}

func printBreakdown(w io.Writer, b costing.Breakdown) {
	fmt.Fprintf(w, "%s (#%d)\n", b.RecipeName, b.RecipeID)
	for _, l := range b.Lines {
		fmt.Fprintf(w, "  %-24s %8.3f kg x %8.2f = %8.2f\n", l.IngredientName, l.QuantityKg, l.PricePerKg, l.Cost)
	}
	fmt.Fprintf(w, "ingredients  %10.2f\n", b.TotalIngredientCost)
	fmt.Fprintf(w, "overheads    %10.2f\n", b.Overheads)
	fmt.Fprintf(w, "final cost   %10.2f\n", b.FinalCost)
	fmt.Fprintf(w, "selling      %10.2f\n", b.SellingPrice)
	if b.HasMargin {
		fmt.Fprintf(w, "margin       %9.2f%%\n", b.MarginPercent)
	} else {
		fmt.Fprintln(w, "margin       n/a")
	}
}

func printWarnings(w io.Writer, warnings []string) {
	for _, msg := range warnings {
		fmt.Fprintln(w, "warning:", msg)
	}
}

func newRegisterCmd(flags *globalFlags) *cobra.Command {
	var (
		registerName string
		month        string
		asCSV        bool
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Print a monthly stock register",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := ledger.ParseRegister(registerName)
			if err != nil {
				return err
			}
			monthRef := time.Now()
			if month != "" {
				if monthRef, err = ledger.ParseMonth(month); err != nil {
					return err
				}
			}

			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.books().MonthlyRegister(cmd.Context(), reg, monthRef)
			if err != nil {
				return err
			}
			view := res.Value
			sheet := export.RegisterSheet{Register: view.Register, Month: view.Month, Entries: view.Entries, Summary: view.Summary}

			if asCSV {
				return export.WriteRegisterCSV(cmd.OutOrStdout(), sheet)
			}
			printRegister(cmd.OutOrStdout(), sheet)
			return nil
		},
	}

	cmd.Flags().StringVar(&registerName, "register", string(ledger.RegisterPodi), "register to print (podi or raw)")
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default is the current month)")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write CSV instead of a table")
	return cmd
}

func printRegister(w io.Writer, sheet export.RegisterSheet) {
	reg := sheet.Register
	fmt.Fprintf(w, "%s - %s\n", reg.Title(), sheet.Month)
	fmt.Fprintf(w, "%-10s %-20s %9s %10s %9s %9s %9s\n", "Date", "Item", "Opening", reg.InboundLabel(), reg.OutboundLabel(), "Wastage", "Closing")
	for _, e := range sheet.Entries {
		fmt.Fprintf(w, "%-10s %-20s %9.1f %10.1f %9.1f %9.1f %9.1f\n",
			ledger.FormatDay(e.Date), e.ItemName, e.Opening, e.Inbound, e.Outbound, e.Wastage, e.Closing)
	}
	s := sheet.Summary
	fmt.Fprintf(w, "%-10s %-20s %9.1f %10.1f %9.1f %9.1f %9.1f\n",
		"TOTAL", fmt.Sprintf("%d entries", s.Entries), s.TotalOpening, s.TotalInbound, s.TotalOutbound, s.TotalWastage, s.TotalClosing)
}

func newSnapshotCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Export and archive last month's registers now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			opts := scheduler.Options{
				Spec:     a.cfg.Reporting.SnapshotCron,
				Location: a.cfg.Location(),
				Source:   a.books(),
				Logger:   a.log,
			}
			if a.cfg.Export.Bucket != "" {
				uploader, err := export.NewS3Uploader(ctx, a.cfg.Export.Region, a.cfg.Export.Bucket)
				if err != nil {
					return err
				}
				opts.Uploader = uploader
			}
			if a.cfg.MongoDB.URI != "" {
				arc, err := archive.NewMongoArchive(ctx, a.cfg.MongoDB.URI, a.cfg.MongoDB.DBName)
				if err != nil {
					return err
				}
				defer func() {
					if err := arc.Close(context.Background()); err != nil {
						a.log.Error("failed to close mongodb connection", zap.Error(err))
					}
				}()
				opts.Archive = arc
			}
			if opts.Uploader == nil && opts.Archive == nil {
				return errors.New("nothing to do: set S3_BUCKET or MONGODB_URI")
			}

			return scheduler.New(opts).RunMonthlySnapshot(ctx)
		},
	}
}
