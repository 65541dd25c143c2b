package legame

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soundprediction/legame/pkg/config"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var askShowEvidence bool

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&askShowEvidence, "evidence", false, "print the evidence behind the answer")
}

func runAsk(cmd *cobra.Command, args []string) error {
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
		return errors.New("ask requires an LLM: set llm.api_key or OPENAI_API_KEY")
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

	query := strings.Join(args, " ")
	response, err := client.Answer(ctx, g, emb, query)
	if err != nil {
		return err
	}

	fmt.Println(response.Answer)
	if askShowEvidence && response.HasEvidence() {
		fmt.Println()
		fmt.Println(response.Context)
		if response.Truncated > 0 {
			fmt.Printf("(%d sentences omitted by the token budget)\n", response.Truncated)
		}
	}
	return nil
}
