package cli

import (
	"context"
	"fmt"

	"habittracker/pkg/mq"
	"habittracker/pkg/outbox"
)

// ReplayCmd re-publishes outbox events, by id or every failed one.
type ReplayCmd struct {
	ID     int64 `help:"Outbox event id to replay." xor:"target"`
	Failed bool  `help:"Replay every event parked as failed." xor:"target"`
	Limit  int   `help:"Maximum failed events to replay." default:"100"`
}

func (c *ReplayCmd) Run(app *Context) error {
	if c.ID <= 0 && !c.Failed {
		return fmt.Errorf("pass --id or --failed")
	}
	if app.Config.MQ.URL == "" {
		return mq.ErrNotConfigured
	}

	pool, err := app.Pool()
	if err != nil {
		return err
	}
	publisher, err := mq.NewPublisher(app.Config.MQ.URL)
	if err != nil {
		return err
	}
	defer publisher.Close()

	replay := outbox.NewReplayService(outbox.NewRepository(pool), publisher, app.Logger)
	ctx := context.Background()

	if c.Failed {
		n, err := replay.ReplayFailedEvents(ctx, c.Limit)
		if err != nil {
			return err
		}
		fmt.Fprintf(app.Out, "replayed %d failed event(s)\n", n)
		return nil
	}

	if err := replay.ReplayEvent(ctx, c.ID); err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "replayed event %d\n", c.ID)
	return nil
}
