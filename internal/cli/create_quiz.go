package cli

import (
	"context"
	"fmt"
	"os"

	"weekly-quiz-service/internal/config"
	"weekly-quiz-service/internal/domain"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewCreateQuizCmd validates a YAML quiz draft and stores it.
func NewCreateQuizCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create-quiz",
		Short: "Create a quiz from a YAML draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			draft, err := readDraft(file)
			if err != nil {
				return err
			}
			quiz, err := createQuiz(cmd.Context(), cfg, draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created quiz %s (%s, %d questions)\n", quiz.ID, quiz.Subject, len(quiz.Questions))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the YAML quiz draft")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readDraft(path string) (domain.QuizDraft, error) {
	var draft domain.QuizDraft
	data, err := os.ReadFile(path)
	if err != nil {
		return draft, err
	}
	if err := yaml.Unmarshal(data, &draft); err != nil {
		return draft, fmt.Errorf("parse draft %s: %w", path, err)
	}
	return draft, draft.Validate()
}

func createQuiz(ctx context.Context, cfg config.Config, draft domain.QuizDraft) (domain.Quiz, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Store.Driver == config.DriverMemory {
		return domain.Quiz{}, fmt.Errorf("create-quiz needs a persistent store; store.driver is %s", config.DriverMemory)
	}
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return domain.Quiz{}, err
	}
	defer b.Close()
	return newService(cfg, b).CreateQuiz(ctx, draft)
}
