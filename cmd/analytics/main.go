package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"surveyhub/config"
	"surveyhub/internal/analytics"
	"surveyhub/internal/database"
	"surveyhub/internal/logger"
	"surveyhub/internal/repositories"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "analytics",
		Short: "Offline analysis of collected survey responses",
	}

	rootCmd.AddCommand(sentimentCmd())
	rootCmd.AddCommand(topicsCmd())
	rootCmd.AddCommand(askCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newService() (*analytics.Service, func(), error) {
	logger.InitDefault(slog.LevelWarn)

	cfg, err := config.InitConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	service := analytics.NewService(
		repositories.NewResponse(db),
		analytics.NewCompletionClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel),
		analytics.NewEmbeddingClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel),
		analytics.NewAnalysisCache(db.Cache.Analytics),
	)

	return service, func() { db.Close() }, nil
}

func sentimentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sentiment",
		Short: "Label completed responses positive, neutral or negative",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, cleanup, err := newService()
			if err != nil {
				return err
			}
			defer cleanup()

			labels, err := service.Sentiment(context.Background())
			if err != nil {
				return err
			}
			return printJSON(labels)
		},
	}
}

func topicsCmd() *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Cluster free-text answers into topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, cleanup, err := newService()
			if err != nil {
				return err
			}
			defer cleanup()

			topics, err := service.Topics(context.Background(), k)
			if err != nil {
				return err
			}
			return printJSON(topics)
		},
	}

	cmd.Flags().IntVarP(&k, "clusters", "k", 5, "number of topic clusters")
	return cmd
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a question about the collected responses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, cleanup, err := newService()
			if err != nil {
				return err
			}
			defer cleanup()

			answer, err := service.Ask(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(answer)
			return nil
		},
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
