package legame

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soundprediction/legame/pkg/config"
	"github.com/soundprediction/legame/pkg/export"
	"github.com/soundprediction/legame/pkg/simplify"
)

var simplifyCmd = &cobra.Command{
	Use:   "simplify",
	Short: "Merge near-duplicate nodes in the graph",
	Long: `Simplify merges nodes whose embeddings score above the similarity
threshold, keeping the higher-degree node of each pair. The rewritten
graph replaces the persisted snapshot; an audit trail of the merges can
be exported as parquet.`,
	RunE: runSimplify,
}

var (
	simplifyThreshold float64
	simplifyRecompute bool
	simplifyExport    bool
)

func init() {
	rootCmd.AddCommand(simplifyCmd)
	simplifyCmd.Flags().Float64Var(&simplifyThreshold, "threshold", 0, "similarity threshold (0 uses the configured value)")
	simplifyCmd.Flags().BoolVar(&simplifyRecompute, "recompute-embeddings", false, "re-embed nodes that absorbed merges")
	simplifyCmd.Flags().BoolVar(&simplifyExport, "export", false, "write merge records and edges as parquet")
}

func runSimplify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := newLogger(cfg)
	client, err := newClient(cfg, log)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	g, emb, err := loadSnapshot(ctx, st)
	if err != nil {
		return err
	}

	threshold := simplifyThreshold
	if threshold == 0 {
		threshold = cfg.Simplify.Threshold
	}

	result, err := client.Simplify(ctx, g, emb, simplify.Options{
		Threshold:           threshold,
		ExcludedSuffixes:    cfg.Simplify.ExcludedSuffixes,
		RecomputeEmbeddings: simplifyRecompute || cfg.Simplify.RecomputeEmbeddings,
	})
	if err != nil {
		return err
	}

	if err := st.Save(ctx, result.Graph, result.Embeddings); err != nil {
		return err
	}

	fmt.Printf("Merged %d node pairs (%d nodes, %d edges removed)\n",
		result.Merges, result.NodesRemoved, result.EdgesRemoved)
	for _, record := range result.Records {
		fmt.Printf("  %s <- %s (%.3f)\n", record.Kept, record.Removed, record.Score)
	}

	if simplifyExport {
		writer, err := export.NewParquetWriter(cfg.Export.ParquetPath)
		if err != nil {
			return fmt.Errorf("creating parquet writer: %w", err)
		}
		defer writer.Close()

		if err := writer.WriteMergeRecords(ctx, result.Records); err != nil {
			return fmt.Errorf("exporting merge records: %w", err)
		}
		if err := writer.WriteEdges(ctx, result.Graph); err != nil {
			return fmt.Errorf("exporting edges: %w", err)
		}
		fmt.Printf("Exported parquet to %s\n", cfg.Export.ParquetPath)
	}
	return nil
}
