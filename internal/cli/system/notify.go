package system

import (
	"context"
	"strings"

	"github.com/julianstephens/lifeos/internal/cli"
	"github.com/julianstephens/lifeos/internal/notifier"
)

type NotifyCmd struct {
	Destination string   `arg:"" help:"Destination id or name."`
	Text        []string `arg:"" help:"Message text."`
	DryRun      bool     `help:"Print the message instead of sending it."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	sink, err := cli.NewSink(ctx.Config, ctx.Stdout())
	if err != nil {
		return err
	}
	dest, err := sink.Resolve(c.Destination)
	if err != nil {
		return err
	}

	msg := notifier.Message{Text: strings.Join(c.Text, " ")}
	if c.DryRun {
		ctx.Printf("[DryRun] #%s: %s\n", dest.Name, msg.Text)
		return nil
	}
	if err := sink.Send(context.Background(), c.Destination, msg); err != nil {
		return err
	}
	ctx.Printf("✓ Sent to #%s\n", dest.Name)
	return nil
}
