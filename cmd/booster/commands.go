package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	booster "github.com/goliatone/go-booster"
	"github.com/goliatone/go-booster/pkg/rules"
	"github.com/goliatone/go-booster/report"
)

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show completion progress per section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store *booster.Store) error {
				s, err := current(store)
				if err != nil {
					return err
				}
				out, err := report.Status(s, report.Options{})
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func newSetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <section> <field> <value...>",
		Short: "Set one field of a section",
		Long: fmt.Sprintf(`Set one text, number or score field of a section. Numbers that do not
parse clear the field; scores are rounded and clamped to 1..10.

product:  %s
economy:  %s
strategy: %s`,
			strings.Join(booster.FieldNames[booster.ProductPatch](), ", "),
			strings.Join(booster.FieldNames[booster.EconomyPatch](), ", "),
			strings.Join(booster.FieldNames[booster.StrategyPatch](), ", "),
		),
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, ok := booster.ParseSection(args[0])
			if !ok {
				return fmt.Errorf("unknown section %q", args[0])
			}
			field, value := args[1], strings.Join(args[2:], " ")
			return a.withStore(cmd.Context(), func(store *booster.Store) error {
				if err := applySectionField(cmd.Context(), store, section, field, value); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated %s.%s\n", section, field)
				return nil
			})
		},
	}
}

func applySectionField(ctx context.Context, store *booster.Store, section booster.Section, field, value string) error {
	switch section {
	case booster.SectionProduct:
		patch, err := parsePatch[booster.ProductPatch](field, value)
		if err != nil {
			return err
		}
		return store.UpdateProduct(ctx, patch)
	case booster.SectionEconomy:
		patch, err := parsePatch[booster.EconomyPatch](field, value)
		if err != nil {
			return err
		}
		return store.UpdateEconomy(ctx, patch)
	case booster.SectionStrategy:
		patch, err := parsePatch[booster.StrategyPatch](field, value)
		if err != nil {
			return err
		}
		return store.UpdateStrategy(ctx, patch)
	}
	return fmt.Errorf("unknown section %q", section)
}

func parsePatch[P any](field, value string) (P, error) {
	patch, err := booster.ParseInput[P](map[string]string{field: value})
	if errors.Is(err, booster.ErrUnknownField) {
		return patch, fmt.Errorf("%w; available: %s", err, strings.Join(booster.FieldNames[P](), ", "))
	}
	return patch, err
}

func newProductCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage the product calculator rows",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Append an empty product row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store *booster.Store) error {
				item, err := store.AddProduct(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), item.ID)
				return nil
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove <n|id>",
		Short: "Remove a product row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store *booster.Store) error {
				id, err := productID(store, args[0])
				if err != nil {
					return err
				}
				return store.RemoveProduct(cmd.Context(), id)
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <n|id> <field> <value...>",
		Short: "Set one field of a product row",
		Long:  "Fields: " + strings.Join(booster.FieldNames[booster.ProductItemPatch](), ", "),
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parsePatch[booster.ProductItemPatch](args[1], strings.Join(args[2:], " "))
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(store *booster.Store) error {
				id, err := productID(store, args[0])
				if err != nil {
					return err
				}
				return store.UpdateProductItem(cmd.Context(), id, patch)
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List product rows with derived metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store *booster.Store) error {
				s, err := current(store)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				champion, hasChampion := booster.Champion(s.Product.Products)
				for _, row := range booster.ProductRows(s.Product.Products) {
					marker := " "
					if hasChampion && champion.Index == row.Index {
						marker = "*"
					}
					name := row.Item.Name
					if !booster.FilledText(name) {
						name = "-"
					}
					fmt.Fprintf(out, "%s%d. %-20s margin %-10s %-8s efficiency %-8s %s\n",
						marker, row.Index+1, name,
						formatNumber(row.Metrics.Margin),
						formatPercent(row.Metrics.MarginPercent),
						formatNumber(row.Metrics.Efficiency),
						row.Item.ID,
					)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(add, remove, set, list)
	return cmd
}

func newLeverCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lever",
		Short: "Edit the three main growth levers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <n|id> <field> <value...>",
		Short: "Set one field of a growth lever",
		Long: fmt.Sprintf("Fields: %s\nAreas: %s",
			strings.Join(booster.FieldNames[booster.LeverPatch](), ", "),
			strings.Join(areaNames(), ", "),
		),
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parsePatch[booster.LeverPatch](args[1], strings.Join(args[2:], " "))
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(store *booster.Store) error {
				id, err := leverID(store, args[0])
				if err != nil {
					return err
				}
				return store.UpdateLever(cmd.Context(), id, patch)
			})
		},
	})
	return cmd
}

func newOfferCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offer",
		Short: "Edit the premium and mass offers",
	}

	set := &cobra.Command{
		Use:   "set <premium|mass> <field> <value...>",
		Short: "Set one field of an offer",
		Long:  "Fields: " + strings.Join(booster.FieldNames[booster.OfferPatch](), ", "),
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parsePatch[booster.OfferPatch](args[1], strings.Join(args[2:], " "))
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(store *booster.Store) error {
				return store.UpdateOffer(cmd.Context(), booster.OfferKind(strings.ToLower(args[0])), patch)
			})
		},
	}

	phrase := &cobra.Command{
		Use:   "phrase <premium|mass>",
		Short: "Print the one-line offer phrase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store *booster.Store) error {
				s, err := current(store)
				if err != nil {
					return err
				}
				block, ok := s.Product.Offer(booster.OfferKind(strings.ToLower(args[0])))
				if !ok {
					return fmt.Errorf("%w: %s", booster.ErrUnknownOffer, args[0])
				}
				text, ok := booster.OfferPhrase(block)
				if !ok {
					return errors.New("offer needs audience, pain, mechanism and promise")
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}

	cmd.AddCommand(set, phrase)
	return cmd
}

func newReportCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [product|economy|strategy]",
		Short: "Print the plain-text worksheet report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := report.Options{Currency: a.currency}
			return a.withStore(cmd.Context(), func(store *booster.Store) error {
				s, err := current(store)
				if err != nil {
					return err
				}
				var out string
				if len(args) == 1 {
					section, ok := booster.ParseSection(args[0])
					if !ok {
						return fmt.Errorf("unknown section %q", args[0])
					}
					out, err = report.Section(section, s, opts)
				} else {
					insights, evalErr := a.insights(s)
					if evalErr != nil {
						return evalErr
					}
					out, err = report.Full(s, insights, opts)
				}
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&a.currency, "currency", "", "Currency suffix for money values")
	return cmd
}

func newInsightsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Evaluate hint rules against the worksheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store *booster.Store) error {
				s, err := current(store)
				if err != nil {
					return err
				}
				insights, err := a.insights(s)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(insights) == 0 {
					fmt.Fprintln(out, "no insights yet")
				}
				for _, insight := range insights {
					fmt.Fprintf(out, "[%s] %s\n", strings.ToUpper(string(insight.Level)), insight.Message)
				}
				return nil
			})
		},
	}
}

// insights evaluates the configured rules. Rule failures are logged and the
// remaining insights are still returned.
func (a *app) insights(s booster.BoosterState) ([]booster.Insight, error) {
	engine, err := booster.NewInsightEngine(
		booster.WithInsightEngine(a.cfg.Insights.Engine),
		booster.WithExtraInsightRules(a.cfg.Insights.Rules...),
		booster.WithInsightLogger(rules.LoggerFunc(func(event rules.LogEvent) {
			a.logger.Debug("insight rule evaluated",
				zap.String("engine", event.Engine),
				zap.String("rule", event.Label),
				zap.Duration("duration", event.Duration),
				zap.Error(event.Err),
			)
		})),
	)
	if err != nil {
		return nil, err
	}
	insights, err := engine.Evaluate(s)
	if err != nil {
		a.logger.Warn("insight rules failed", zap.Error(err))
	}
	return insights, nil
}

func newResetCommand(a *app) *cobra.Command {
	var purge bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the empty worksheet",
		Long: `Reset replaces the stored worksheet with the empty default.
With --purge the stored snapshot is removed and nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store *booster.Store) error {
				if purge {
					return store.Purge(cmd.Context())
				}
				return store.Reset(cmd.Context())
			})
		},
	}
	cmd.Flags().BoolVar(&purge, "purge", false, "Delete the stored snapshot without writing a new one")
	return cmd
}

func productID(store *booster.Store, ref string) (string, error) {
	s, err := current(store)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(s.Product.Products))
	for i, item := range s.Product.Products {
		ids[i] = item.ID
	}
	return resolveRef(ref, ids, booster.ErrUnknownProduct)
}

func leverID(store *booster.Store, ref string) (string, error) {
	s, err := current(store)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(s.Economy.MainLevers))
	for i, lever := range s.Economy.MainLevers {
		ids[i] = lever.ID
	}
	return resolveRef(ref, ids, booster.ErrUnknownLever)
}

// resolveRef accepts a 1-based position or an id.
func resolveRef(ref string, ids []string, notFound error) (string, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(ids) {
			return "", fmt.Errorf("%w: position %d", notFound, n)
		}
		return ids[n-1], nil
	}
	return ref, nil
}

func areaNames() []string {
	areas := booster.LeverAreas()
	names := make([]string, 0, len(areas))
	for _, area := range areas {
		names = append(names, string(area))
	}
	return names
}

func formatNumber(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return humanize.CommafWithDigits(*v, 2)
}

func formatPercent(v *float64) string {
	if v == nil {
		return "(n/a)"
	}
	return fmt.Sprintf("(%.1f%%)", *v)
}
