package legame

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	legamepkg "github.com/soundprediction/legame"
	"github.com/soundprediction/legame/pkg/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print summary statistics of the persisted graph",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	g, _, err := loadSnapshot(cmd.Context(), st)
	if err != nil {
		return err
	}

	return yaml.NewEncoder(os.Stdout).Encode(legamepkg.Stats(g))
}
