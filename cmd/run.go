package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jobsift/jobsift/internal/logger"
	"github.com/jobsift/jobsift/internal/pipeline"
	"github.com/jobsift/jobsift/internal/utils"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptShowTop         = "Show top matches"
	PromptShowRecommended = "Show recommended only"
	PromptReportByCompany = "Report by company"
	PromptResultsToFile   = "Dump results to file"
	PromptExit            = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowTop, PromptShowRecommended, PromptReportByCompany, PromptResultsToFile, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one search cycle and rank the results",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("no-prompt", "y", false, "print the ranked results and exit without the interactive prompt")
	runCmd.Flags().IntP("limit", "n", 10, "how many top matches to show")

	viper.BindPFlag("limit", runCmd.Flags().Lookup("limit"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting jobsift", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	a, err := newApplication(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the application", zap.Error(err))
	}

	ranked, err := a.pipeline.RunCycle(ctx, a.candidate, a.candidateHash)
	if err != nil {
		logger.Fatal("search cycle failed", zap.Error(err))
	}

	if len(ranked) == 0 {
		logger.Info("exiting", zap.String("reason", "no postings left after filters"))
		return
	}

	limit := viper.GetInt("limit")
	printRanked(ranked, limit, false)

	if cmd.Flag("no-prompt").Value.String() == "true" {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, ranked, limit); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, ranked []pipeline.Ranked, limit int) error {
	switch action {
	case PromptShowTop:
		printRanked(ranked, limit, false)
		return nil
	case PromptShowRecommended:
		printRanked(ranked, limit, true)
		return nil
	case PromptReportByCompany:
		pretty, _ := json.MarshalIndent(reportByCompany(ranked), "", "  ")
		logger.Info(string(pretty), zap.Int("postings count", len(ranked)))
		return nil
	case PromptResultsToFile:
		filename, err := dumpToTmpFile(ranked)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping results to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func printRanked(ranked []pipeline.Ranked, limit int, recommendedOnly bool) {
	shown := 0
	for _, r := range ranked {
		if recommendedOnly && !r.Recommended {
			continue
		}
		if limit > 0 && shown >= limit {
			break
		}
		shown++

		marker := " "
		if r.Recommended {
			marker = "*"
		}

		fmt.Printf("%s %5.1f  %-45s %-25s %s\n",
			marker, r.Score.Total, utils.TruncateForLog(r.Posting.Title, 45), utils.TruncateForLog(r.Posting.Company, 25), r.Posting.URL,
		)
		if len(r.Score.Reasons) > 0 {
			fmt.Printf("         %s\n", strings.Join(r.Score.Reasons, " "))
		}
	}

	if shown == 0 {
		fmt.Println("nothing to show")
	}
}

// reportByCompany groups posting titles per company, best score first within
// a group since the input is already ranked.
func reportByCompany(ranked []pipeline.Ranked) map[string][]string {
	report := make(map[string][]string)
	for _, r := range ranked {
		company := r.Posting.Company
		if company == "" {
			company = "Unknown"
		}
		report[company] = append(report[company], fmt.Sprintf("%.1f %s", r.Score.Total, r.Posting.Title))
	}
	return report
}

func dumpToTmpFile(ranked []pipeline.Ranked) (string, error) {
	payload, err := json.MarshalIndent(ranked, "", "  ")
	if err != nil {
		return "", err
	}

	file, err := os.CreateTemp("", "jobsift_results_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := file.Write(payload); err != nil {
		return "", err
	}

	return file.Name(), nil
}
