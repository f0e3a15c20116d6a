package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mero-vet/vet-clinic-app-sub000/config"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/catalog"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/registry"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/repository/memory"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/service/appointment"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/logger"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/messaging"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/messaging/redis"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "schedctl",
		Short:        "Inspect the clinic scheduling configuration and event stream",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to config.yml (defaults to the usual search paths)")

	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(typesCmd())
	rootCmd.AddCommand(slotsCmd())
	rootCmd.AddCommand(eventsCmd())
	return rootCmd
}

type clinic struct {
	cfg      *config.Config
	catalog  *catalog.Catalog
	registry *registry.Registry
}

func loadClinic(cmd *cobra.Command) (*clinic, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if _, err := cfg.Scheduling.Location(); err != nil {
		return nil, err
	}
	cat, err := catalog.FromConfig(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	reg, err := registry.FromConfig(cat, cfg.Resources)
	if err != nil {
		return nil, fmt.Errorf("invalid resources: %w", err)
	}
	return &clinic{cfg: cfg, catalog: cat, registry: reg}, nil
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the config and check the catalog and resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadClinic(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ok: %d appointment types, %d providers, %d rooms\n",
				len(c.catalog.AppointmentTypes()), len(c.registry.Providers()), len(c.registry.Rooms()))
			for _, wh := range c.catalog.WeeklyHours() {
				if wh.Hours.Closed {
					fmt.Fprintf(out, "  %-9s closed\n", wh.Weekday)
					continue
				}
				fmt.Fprintf(out, "  %-9s %s-%s\n", wh.Weekday, wh.Hours.Open, wh.Hours.Close)
			}
			return nil
		},
	}
}

func typesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List appointment types and who can perform them",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadClinic(cmd)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tMINUTES\tPRIORITY\tPROVIDERS")
			for _, t := range c.catalog.AppointmentTypes() {
				var providers []string
				for _, p := range c.registry.ProvidersFor(t.ID) {
					providers = append(providers, p.ID)
				}
				fmt.Fprintf(w, "%s\t%s\t%d+%d\t%s\t%v\n", t.ID, t.Name, t.Duration, t.Buffer, t.Priority, providers)
			}
			return w.Flush()
		},
	}
}

// slotsCmd previews open slots against an empty book, which shows how hours,
// lunch and the emergency reserve shape a provider's day.
func slotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Preview open slots for a provider on an empty day",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadClinic(cmd)
			if err != nil {
				return err
			}
			rawDate, _ := cmd.Flags().GetString("date")
			providerID, _ := cmd.Flags().GetString("provider")
			typeID, _ := cmd.Flags().GetString("type")

			date, err := model.ParseDate(rawDate)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			loc, _ := c.cfg.Scheduling.Location()
			svc := appointment.NewService(memory.NewAppointmentStore(), c.catalog, c.registry,
				appointment.WithLocation(loc),
				appointment.WithSlotGranularity(c.cfg.Scheduling.SlotGranularity),
			)

			slots, err := svc.GetAvailableSlots(cmd.Context(), appointment.SlotQuery{
				Date:              date,
				ProviderID:        providerID,
				AppointmentTypeID: typeID,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range slots {
				fmt.Fprintf(out, "%s-%s\n", s.Time, s.EndTime)
			}
			fmt.Fprintf(out, "%d slots\n", len(slots))
			return nil
		},
	}
	cmd.Flags().String("date", "", "Day to preview (YYYY-MM-DD)")
	cmd.Flags().String("provider", "", "Provider id")
	cmd.Flags().String("type", "", "Appointment type id")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("provider")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Work with the relayed event stream",
	}

	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Print events published on the Redis channel until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			eventType, _ := cmd.Flags().GetString("type")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logger.NewLogger(&logger.Config{Level: logger.WarnLevel, Output: os.Stderr})
			broker, err := redis.NewRedisBroker(ctx, cfg.Redis.ToBrokerConfig(), log.Zerolog())
			if err != nil {
				return err
			}
			defer broker.Close()

			return tail(ctx, broker, cfg.Redis.Channel, eventType, json.NewEncoder(cmd.OutOrStdout()))
		},
	}
	tailCmd.Flags().String("type", "", "Only print events of this type")
	cmd.AddCommand(tailCmd)
	return cmd
}

// tail prints envelopes from channel until ctx ends or the subscription
// closes. Messages that are not envelopes are skipped.
func tail(ctx context.Context, broker messaging.Broker, channel, eventType string, enc *json.Encoder) error {
	msgs, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			env, err := messaging.DecodeEnvelope(msg)
			if err != nil {
				continue
			}
			if eventType != "" && env.Type != eventType {
				continue
			}
			if err := enc.Encode(env); err != nil {
				return err
			}
		}
	}
}
