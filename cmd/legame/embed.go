package legame

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soundprediction/legame/pkg/config"
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embed graph nodes that are missing vectors",
	RunE:  runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := newLogger(cfg)
	client, err := newClient(cfg, log)
	if err != nil {
		return err
	}
	if client.GetEmbedder() == nil {
		return errors.New("embed requires an embedder: set embedding.api_key or OPENAI_API_KEY")
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

	count, err := client.EmbedNodes(ctx, g, emb)
	if err != nil {
		return err
	}
	if err := st.Save(ctx, g, emb); err != nil {
		return err
	}

	fmt.Printf("Embedded %d nodes (%d total in store)\n", count, emb.Len())
	return nil
}
