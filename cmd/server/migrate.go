package main

import (
	"github.com/spf13/cobra"

	"grunnlag/internal/platform/kafka"
)

func newMigrateCmd() *cobra.Command {
	var partitions int32
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and create the Kafka topic",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.migrate(ctx); err != nil {
				return err
			}
			if err := a.connectKafka(); err != nil {
				return err
			}
			if a.kafka == nil {
				return nil
			}
			if err := kafka.EnsureTopic(ctx, a.kafka, a.cfg.Kafka.Topic, partitions, -1); err != nil {
				return err
			}
			a.logger.InfoContext(ctx, "kafka topic ready", "topic", a.cfg.Kafka.Topic)
			return nil
		},
	}
	cmd.Flags().Int32Var(&partitions, "partitions", 6, "Partition count when creating the topic")
	return cmd
}
