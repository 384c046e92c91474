package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/turtacn/mhtech-dashboard/internal/config"
	kafkainfra "github.com/turtacn/mhtech-dashboard/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

func defaultEventConsumer(cfg config.KafkaConfig, logger logging.Logger) (*kafkainfra.Consumer, error) {
	return kafkainfra.NewConsumer(cfg, cfg.Topic, "", logger)
}

// eventLine formats one envelope as a single terminal line.
func eventLine(env *kafkainfra.EventEnvelope) string {
	ts := env.Timestamp.Local().Format("15:04:05")
	switch env.EventType {
	case kafkainfra.EventViewRendered:
		var p kafkainfra.ViewRenderedPayload
		if err := env.DecodePayload(&p); err == nil {
			cache := "miss"
			if p.Cached {
				cache = "hit"
			}
			return fmt.Sprintf("%s %s %s.%s %s %d B cache=%s %dms",
				ts, colorCyan.Sprint(env.EventType), p.View, p.Format, p.Theme, p.Bytes, cache, p.DurationMs)
		}
	case kafkainfra.EventSnapshotCreated:
		var p kafkainfra.SnapshotCreatedPayload
		if err := env.DecodePayload(&p); err == nil {
			return fmt.Sprintf("%s %s %s objects=%d %d B",
				ts, colorGreen.Sprint(env.EventType), p.SnapshotID, p.Objects, p.Bytes)
		}
	}
	return fmt.Sprintf("%s %s %s", ts, env.EventType, string(env.Payload))
}

// followEvents prints envelopes from c until ctx ends or max events were
// seen (max <= 0 means unbounded).
func followEvents(ctx context.Context, c *kafkainfra.Consumer, w io.Writer, jsonOut bool, max int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu   sync.Mutex
		seen int
	)
	c.Subscribe(func(ctx context.Context, msg *kafkainfra.Message) error {
		env, err := kafkainfra.MessageToEventEnvelope(msg)
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		if jsonOut {
			err = printJSON(w, env)
		} else {
			_, err = fmt.Fprintln(w, eventLine(env))
		}
		seen++
		if max > 0 && seen >= max {
			cancel()
		}
		return err
	})
	if err := c.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	err := c.Close()
	c.Wait()
	return err
}

func newEventsCmd() *cobra.Command {
	var max int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow render and snapshot events from Kafka",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config.Kafka
			if !cfg.Enabled {
				return errors.FeatureDisabled("events").WithDetail("set kafka.enabled to follow events")
			}
			newConsumer := cliCtx.Deps.EventConsumer
			if newConsumer == nil {
				newConsumer = defaultEventConsumer
			}
			consumer, err := newConsumer(cfg, cliCtx.Logger)
			if err != nil {
				return err
			}
			return followEvents(cmd.Context(), consumer, cmd.OutOrStdout(), cliCtx.OutputFormat == OutputJSON, max)
		},
	}
	cmd.Flags().IntVarP(&max, "max", "n", 0, "stop after n events (0 follows until interrupted)")
	return cmd
}
