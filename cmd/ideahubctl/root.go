package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// options shared by every subcommand.
type globals struct {
	mongoURI string
	database string
	json     bool
	verbose  bool
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "ideahubctl",
		Short: "Operator tasks for an ideahub deployment",
		Long: `ideahubctl runs maintenance against the ideahub MongoDB database.

  ideahubctl indexes            Create indexes and collection validators
  ideahubctl reconcile          Repair member and comment counters
  ideahubctl token --user ID    Mint a development bearer token`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.mongoURI, "mongo-uri", envOr("IDEAHUB_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	root.PersistentFlags().StringVar(&g.database, "database", envOr("IDEAHUB_MONGO_DATABASE", "ideahub"), "MongoDB database name")
	root.PersistentFlags().BoolVar(&g.json, "json", false, "Output as JSON")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log at debug level")

	root.AddCommand(
		newIndexesCmd(g),
		newReconcileCmd(g),
		newTokenCmd(),
	)
	return root
}

func (g *globals) logger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !g.verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// connect opens the database; the returned func disconnects.
func (g *globals) connect(ctx context.Context) (*mongo.Database, func(), error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(g.mongoURI).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("pinging mongo: %w", err)
	}
	done := func() { _ = client.Disconnect(context.Background()) }
	return client.Database(g.database), done, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
