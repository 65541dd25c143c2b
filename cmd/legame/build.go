package legame

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	legamepkg "github.com/soundprediction/legame"
	"github.com/soundprediction/legame/pkg/config"
	"github.com/soundprediction/legame/pkg/embeddings"
	"github.com/soundprediction/legame/pkg/hypergraph"
	"github.com/soundprediction/legame/pkg/store"
)

var buildCmd = &cobra.Command{
	Use:   "build <file>...",
	Short: "Extract facts from text files and merge them into the graph",
	Long: `Build reads the given text files, extracts factual relationships from each
one via the configured LLM, merges the resulting hyperedges into the
persisted graph, and embeds any new nodes when an embedder is configured.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

var buildSkipEmbed bool

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().BoolVar(&buildSkipEmbed, "skip-embed", false, "do not embed new nodes")
}

// loadSnapshot returns the persisted snapshot, or an empty one when none
// exists yet.
func loadSnapshot(ctx context.Context, st store.Store) (*hypergraph.Hypergraph, *embeddings.Store, error) {
	g, emb, err := st.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return hypergraph.New(), embeddings.NewStore(), nil
	}
	return g, emb, err
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := newLogger(cfg)
	client, err := newClient(cfg, log)
	if err != nil {
		return err
	}
	if client.GetLLM() == nil {
		return errors.New("build requires an LLM: set llm.api_key or OPENAI_API_KEY")
	}

	docs := make([]legamepkg.Document, 0, len(args))
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		docs = append(docs, legamepkg.Document{ID: id, Content: string(content)})
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

	result, err := client.AddDocuments(ctx, docs)
	if err != nil {
		return err
	}
	g.UnionInPlace(result.Graph)

	if !buildSkipEmbed && client.GetEmbedder() != nil {
		count, err := client.EmbedNodes(ctx, g, emb)
		if err != nil {
			return err
		}
		fmt.Printf("Embedded %d new nodes\n", count)
	}

	if err := st.Save(ctx, g, emb); err != nil {
		return err
	}

	fmt.Printf("Processed %d documents (%d facts, %d failed)\n",
		result.Documents, result.Facts, len(result.Failed))
	for id, docErr := range result.Failed {
		fmt.Printf("  failed %s: %v\n", id, docErr)
	}
	fmt.Printf("Graph now has %d nodes and %d edges\n", g.NumNodes(), g.NumEdges())
	return nil
}
