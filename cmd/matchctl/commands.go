package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/angelmondragon/garmentz-backend/internal/assignments"
	"github.com/angelmondragon/garmentz-backend/internal/cron"
	"github.com/angelmondragon/garmentz-backend/internal/matching"
	"github.com/angelmondragon/garmentz-backend/internal/quotes"
	"github.com/angelmondragon/garmentz-backend/pkg/enums"
)

const cliActorRole = "operator"

var jsonFlag = &cli.BoolFlag{
	Name:  "json",
	Usage: "print JSON instead of a table",
}

var actorFlag = &cli.StringFlag{
	Name:  "actor",
	Usage: "admin user id recorded on assignment events",
}

var quotesCmd = &cli.Command{
	Name:    "quotes",
	Usage:   "List unassigned quotes with their urgency",
	Aliases: []string{"q"},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "urgency",
			Value: "all",
			Usage: "high, medium, low or all",
		},
		&cli.StringFlag{
			Name:  "search",
			Usage: "case-insensitive text match on buyer or product",
		},
		jsonFlag,
	},
	Action: withRuntime(func(ctx context.Context, c *cli.Context, rt *runtime) error {
		filter, err := enums.ParseUrgencyFilter(c.String("urgency"))
		if err != nil {
			return err
		}
		list, err := rt.services.Quotes.ListUnassigned(ctx, quotes.ListParams{
			Urgency: filter,
			Search:  c.String("search"),
		})
		if err != nil {
			return err
		}
		if c.Bool("json") {
			return writeJSON(os.Stdout, list)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tURGENCY\tAGE\tBUYER\tPRODUCT\tQTY\tTARGET")
		for _, q := range list {
			fmt.Fprintf(w, "%s\t%s\t%dd\t%s\t%s\t%d\t%s\n",
				q.ID, q.Urgency, q.AgeDays, q.Buyer.Name, q.ProductType, q.Quantity, q.TargetPrice.StringFixed(2))
		}
		return w.Flush()
	}),
}

var suppliersCmd = &cli.Command{
	Name:    "suppliers",
	Usage:   "List eligible suppliers with derived statistics",
	Aliases: []string{"s"},
	Flags:   []cli.Flag{jsonFlag},
	Action: withRuntime(func(ctx context.Context, c *cli.Context, rt *runtime) error {
		pool, err := rt.services.Suppliers.ListEligible(ctx)
		if err != nil {
			return err
		}
		if c.Bool("json") {
			return writeJSON(os.Stdout, pool)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCOMPANY\tRATING\tWORKLOAD\tCAPACITY\tON-TIME")
		for _, s := range pool {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.1f%%\n",
				s.ID, s.CompanyName, s.Rating.StringFixed(1), s.CurrentWorkload, s.ProductionCapacity, s.OnTimeDeliveryRate)
		}
		return w.Flush()
	}),
}

var matchesCmd = &cli.Command{
	Name:  "matches",
	Usage: "Show the ranked supplier candidates for one quote",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "quote",
			Required: true,
			Usage:    "quote id",
		},
		&cli.IntFlag{
			Name:  "limit",
			Value: matching.DefaultTopK,
			Usage: "number of candidates to show",
		},
		jsonFlag,
	},
	Action: withRuntime(func(ctx context.Context, c *cli.Context, rt *runtime) error {
		quoteID, err := uuid.Parse(c.String("quote"))
		if err != nil {
			return fmt.Errorf("invalid quote id: %w", err)
		}
		quote, err := rt.services.Quotes.Get(ctx, quoteID)
		if err != nil {
			return err
		}
		pool, err := rt.services.Suppliers.ListEligible(ctx)
		if err != nil {
			return err
		}
		matches := matching.Top(*quote, pool, c.Int("limit"))
		if c.Bool("json") {
			return writeJSON(os.Stdout, matches)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tSUPPLIER\tCOMPANY\tSCORE\tREASONS")
		for i, m := range matches {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%v\n", i+1, m.Supplier.ID, m.Supplier.CompanyName, m.Score, m.Reasons)
		}
		return w.Flush()
	}),
}

var planCmd = &cli.Command{
	Name:  "plan",
	Usage: "Run the batch planner over the unassigned pool",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "urgency",
			Value: "all",
			Usage: "high, medium, low or all",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "maximum quotes to plan, 0 for no limit",
		},
		&cli.BoolFlag{
			Name:  "commit",
			Usage: "write the planned assignments instead of a dry run",
		},
		actorFlag,
		jsonFlag,
	},
	Action: withRuntime(func(ctx context.Context, c *cli.Context, rt *runtime) error {
		filter, err := enums.ParseUrgencyFilter(c.String("urgency"))
		if err != nil {
			return err
		}
		actorID, err := parseActor(c)
		if err != nil {
			return err
		}
		result, err := rt.services.Assignments.AutoAssign(ctx, assignments.AutoAssignInput{
			Urgency:   filter,
			Limit:     c.Int("limit"),
			DryRun:    !c.Bool("commit"),
			ActorID:   actorID,
			ActorRole: cliActorRole,
		})
		if err != nil {
			return err
		}
		if c.Bool("json") {
			return writeJSON(os.Stdout, result)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "QUOTE\tURGENCY\tSTATUS\tSUPPLIER\tSCORE")
		for _, o := range result.Outcomes {
			supplier, score := "-", "-"
			if o.SupplierID != nil {
				supplier = o.SupplierID.String()
			}
			if o.Score != nil {
				score = fmt.Sprint(*o.Score)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.QuoteID, o.Urgency, o.Status, supplier, score)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("dry_run=%t counts=%v\n", result.DryRun, result.Counts)
		return nil
	}),
}

var assignCmd = &cli.Command{
	Name:  "assign",
	Usage: "Assign a supplier to a quote, or the best match with --quick",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "quote",
			Required: true,
			Usage:    "quote id",
		},
		&cli.StringFlag{
			Name:  "supplier",
			Usage: "supplier id; required unless --quick",
		},
		&cli.BoolFlag{
			Name:  "quick",
			Usage: "assign the rank-1 supplier",
		},
		actorFlag,
	},
	Action: withRuntime(func(ctx context.Context, c *cli.Context, rt *runtime) error {
		quoteID, err := uuid.Parse(c.String("quote"))
		if err != nil {
			return fmt.Errorf("invalid quote id: %w", err)
		}
		actorID, err := parseActor(c)
		if err != nil {
			return err
		}

		var result *assignments.Result
		if c.Bool("quick") {
			result, err = rt.services.Assignments.QuickAssign(ctx, assignments.QuickAssignInput{
				QuoteID:   quoteID,
				ActorID:   actorID,
				ActorRole: cliActorRole,
			})
		} else {
			supplierID, parseErr := uuid.Parse(c.String("supplier"))
			if parseErr != nil {
				return fmt.Errorf("invalid supplier id: %w", parseErr)
			}
			result, err = rt.services.Assignments.Assign(ctx, assignments.AssignInput{
				QuoteID:    quoteID,
				SupplierID: supplierID,
				ActorID:    actorID,
				ActorRole:  cliActorRole,
				Mode:       enums.AssignmentModeManual,
			})
		}
		if err != nil {
			return err
		}
		return writeJSON(os.Stdout, result)
	}),
}

var refreshStatsCmd = &cli.Command{
	Name:  "refresh-stats",
	Usage: "Rebuild the supplier order statistics aggregate",
	Action: withRuntime(func(ctx context.Context, c *cli.Context, rt *runtime) error {
		job, err := cron.NewSupplierStatsJob(cron.SupplierStatsJobParams{
			Logger:    rt.logg,
			DB:        rt.db,
			Stats:     rt.services.Stats,
			Suppliers: rt.services.Suppliers,
		})
		if err != nil {
			return err
		}
		if err := job.Run(ctx); err != nil {
			return err
		}
		fmt.Println("supplier stats refreshed")
		return nil
	}),
}

func parseActor(c *cli.Context) (uuid.UUID, error) {
	raw := c.String("actor")
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid actor id: %w", err)
	}
	return id, nil
}
