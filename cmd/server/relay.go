package main

import (
	"github.com/spf13/cobra"
)

func newRelayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relay",
		Short: "Publish outbox entries to Kafka until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.connectKafka(); err != nil {
				return err
			}
			relay, err := a.relay()
			if err != nil {
				return err
			}
			return relay.Run(ctx)
		},
	}
}
