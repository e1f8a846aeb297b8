package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/flock/internal/client"
	"github.com/alfredjeanlab/flock/internal/events"
	"github.com/alfredjeanlab/flock/internal/model"
)

var watchCmd = &cobra.Command{
	Use:     "watch <view-name>",
	Short:   "Watch a saved view for new and changed items",
	GroupID: "views",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		once, _ := cmd.Flags().GetBool("once")
		if interval <= 0 {
			return fmt.Errorf("--interval must be positive, got %s", interval)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		v, err := loadView(ctx, args[0])
		if err != nil {
			return err
		}
		req, err := viewRequest(v, 1, 0)
		if err != nil {
			return err
		}
		w := &watcher{collection: v.Collection, req: req, seen: map[string]time.Time{}}

		if err := w.queryAndPrint(ctx); err != nil {
			return err
		}
		if once {
			return nil
		}

		natsURL := os.Getenv("FLOCK_NATS_URL")
		if natsURL == "" {
			natsURL = activeRemoteNATSURL()
		}
		if natsURL != "" {
			return w.watchNATS(ctx, natsURL)
		}
		return w.watchPoll(ctx, interval)
	},
}

// watcher re-runs a view's first page and prints items it has not seen at
// their current updated_at.
type watcher struct {
	collection model.Collection
	req        *client.ListItemsRequest
	seen       map[string]time.Time
}

// watchNATS subscribes to item events and re-queries on changes with debounce.
func (w *watcher) watchNATS(ctx context.Context, natsURL string) error {
	reconnectCh := make(chan struct{}, 1)

	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			slog.Info("nats reconnected")
			select {
			case reconnectCh <- struct{}{}:
			default:
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(events.TopicAll)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if c, known := msg.Collection(); known && c != w.collection {
				continue
			}
			debounce.Reset(200 * time.Millisecond)
		case <-reconnectCh:
			debounce.Reset(0)
		case <-debounce.C:
			if err := w.queryAndPrint(ctx); err != nil {
				return err
			}
		}
	}
}

// watchPoll re-queries at the given interval.
func (w *watcher) watchPoll(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", interval)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
		if err := w.queryAndPrint(ctx); err != nil {
			return err
		}
	}
}

func (w *watcher) queryAndPrint(ctx context.Context) error {
	page, err := flockClient.ListItems(ctx, string(w.collection), w.req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	changed := diffItems(page.Items, w.seen)
	if len(changed) == 0 {
		return nil
	}
	if jsonOutput {
		printJSON(changed)
		return nil
	}
	printPage(os.Stdout, w.collection, &client.ItemPage{
		Items:      changed,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
		Page:       page.Page,
		PerPage:    page.PerPage,
	})
	return nil
}

// diffItems returns items that are new or have a different updated_at
// than last seen. It updates seen in place.
func diffItems(items []*model.Item, seen map[string]time.Time) []*model.Item {
	var changed []*model.Item
	for _, it := range items {
		prev, ok := seen[it.ID]
		if !ok || !it.UpdatedAt.Equal(prev) {
			changed = append(changed, it)
		}
		seen[it.ID] = it.UpdatedAt
	}
	return changed
}

func init() {
	watchCmd.Flags().Duration("interval", 5*time.Second, "polling interval when NATS is not configured")
	watchCmd.Flags().Bool("once", false, "exit after the first query")
}
