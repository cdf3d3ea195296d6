package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"chat-analyzer/analysis"
	"chat-analyzer/auth"
	"chat-analyzer/chat"
	"chat-analyzer/db"
	"chat-analyzer/pipeline"
	"chat-analyzer/report"
	"chat-analyzer/sentiment"
	"chat-analyzer/utils"
)

// options are the command line overrides of the configuration
type options struct {
	input      string
	output     string
	batchSize  int
	sampleSize int
	seed       int64
	term       string
	tokenizer  string
	reportDir  string
	export     string
	limit      int
}

type app struct {
	config   *utils.Config
	database *db.DB
	logger   *utils.Logger
	opts     options
	stdin    io.Reader
	stdout   io.Writer
}

func (a *app) run(ctx context.Context, mode string, args []string) error {
	switch mode {
	case "sample":
		return a.sample(ctx)
	case "request":
		return a.request(ctx)
	case "analyze":
		return a.analyze()
	case "merge":
		return a.merge(args)
	case "search":
		return a.search(args)
	case "list":
		return a.list(args)
	case "history":
		return a.history()
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func pick(override, configured string) string {
	if override != "" {
		return override
	}
	return configured
}

// ensureCredentials prompts for keys missing from the config and .env
func (a *app) ensureCredentials() error {
	reader := bufio.NewReader(a.stdin)
	prompt := func(label string) (string, error) {
		fmt.Fprintf(a.stdout, "Enter your %s: ", label)
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	var err error
	if a.config.Baidu.APIKey == "" {
		if a.config.Baidu.APIKey, err = prompt("API Key"); err != nil {
			return err
		}
	}
	if a.config.Baidu.SecretKey == "" {
		if a.config.Baidu.SecretKey, err = prompt("Secret Key"); err != nil {
			return err
		}
	}
	if a.config.Baidu.APIKey == "" || a.config.Baidu.SecretKey == "" {
		return fmt.Errorf("%w: API key and secret key are required", auth.ErrAuth)
	}
	return nil
}

// newRunner authenticates and wires the sentiment client
func (a *app) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	// A cached token needs no keys; prompt only when one must be fetched
	if token, ok, _ := auth.Load(a.config.Credentials.AccessTokenPath); !ok || !auth.IsValid(token) {
		if err := a.ensureCredentials(); err != nil {
			return nil, err
		}
	}

	store := auth.NewStore(auth.Config{
		APIKey:           a.config.Baidu.APIKey,
		SecretKey:        a.config.Baidu.SecretKey,
		TokenURL:         a.config.Baidu.TokenURL,
		AccessTokenPath:  a.config.Credentials.AccessTokenPath,
		RefreshTokenPath: a.config.Credentials.RefreshTokenPath,
	}, a.logger)

	token, err := store.LoadOrFetch(ctx)
	if err != nil {
		return nil, err
	}

	req := a.config.Request
	clientConfig := sentiment.Config{
		URL:             a.config.Baidu.SentimentURL,
		Retries:         req.Retries,
		Timeout:         time.Duration(req.TimeoutSeconds) * time.Second,
		Backoff:         req.Backoff,
		BackoffInterval: time.Duration(req.BackoffSeconds * float64(time.Second)),
	}
	if req.RedactBeforeRequest {
		clientConfig.Redactor = utils.NewRedactor()
	}

	client := sentiment.NewClient(clientConfig, a.logger)
	return pipeline.NewRunner(client, token, a.logger), nil
}

func (a *app) saveRun(mode, output string, stats pipeline.RunStats) {
	err := a.database.SaveRun(&db.Run{
		ID:         stats.RunID,
		Mode:       mode,
		OutputPath: output,
		Batches:    stats.Batches,
		Requested:  stats.Requested,
		Skipped:    stats.Skipped,
		Appended:   stats.Appended,
		Fallbacks:  stats.Fallbacks,
	})
	if err != nil {
		a.logger.Warn("Failed to record run: %v", err)
	}
}

func (a *app) sample(ctx context.Context) error {
	input := pick(a.opts.input, a.config.Data.SampleInputPath)
	output := pick(a.opts.output, a.config.Data.SampleOutputPath)
	size := a.config.Data.SampleSize
	if a.opts.sampleSize > 0 {
		size = a.opts.sampleSize
	}

	messages, err := chat.Load(input, a.logger)
	if err != nil {
		return utils.WrapError(err, "load chat export")
	}

	runner, err := a.newRunner(ctx)
	if err != nil {
		return utils.WrapError(err, "authenticate")
	}

	stats, err := runner.Sample(ctx, messages, output, size, a.opts.seed)
	if err != nil {
		return utils.WrapError(err, "sample")
	}
	a.saveRun("sample", output, stats)
	fmt.Fprintf(a.stdout, "Sample analysis complete. Results saved to %s\n", output)
	return nil
}

func (a *app) request(ctx context.Context) error {
	input := pick(a.opts.input, a.config.Data.ChatDataPath)
	output := pick(a.opts.output, a.config.Data.APIOutputPath)
	batchSize := a.config.Request.BatchSize
	if a.opts.batchSize > 0 {
		batchSize = a.opts.batchSize
	}

	messages, err := chat.Load(input, a.logger)
	if err != nil {
		return utils.WrapError(err, "load chat export")
	}
	if size, err := utils.GetFileSize(output); err == nil {
		a.logger.Info("Resuming from %s (%d bytes)", output, size)
	}

	runner, err := a.newRunner(ctx)
	if err != nil {
		return utils.WrapError(err, "authenticate")
	}

	stats, runErr := runner.Run(ctx, messages, output, batchSize)
	a.saveRun("request", output, stats)
	if runErr != nil {
		return utils.WrapError(runErr, "request")
	}

	fmt.Fprintf(a.stdout, "Processed %d messages in %d batches (%d already done, %d fallbacks). Results saved to %s\n",
		stats.Requested, stats.Batches, stats.Skipped, stats.Fallbacks, output)
	return nil
}

func (a *app) analyze() error {
	input := pick(a.opts.input, a.config.Data.APIOutputPath)
	reportDir := pick(a.opts.reportDir, a.config.Data.ReportDir)

	records, err := pipeline.ReadCheckpoint(input)
	if err != nil {
		return utils.WrapError(err, "read results")
	}

	imported, err := a.database.ImportRecords(records)
	if err != nil {
		return utils.WrapError(err, "archive records")
	}
	a.logger.Info("Archived %d new records", imported)
	if imported > 0 {
		if err := a.database.Vacuum(); err != nil {
			a.logger.Warn("Failed to vacuum database: %v", err)
		}
	}

	tokenizer, err := analysis.NewTokenizer(pick(a.opts.tokenizer, a.config.Analysis.Tokenizer))
	if err != nil {
		return err
	}

	summary, err := analysis.Analyze(records, analysis.Options{
		Tokenizer: tokenizer,
		Term:      pick(a.opts.term, a.config.Analysis.Term),
		TopWords:  a.config.Analysis.TopWords,
	})
	if err != nil {
		return err
	}

	if err := report.Print(a.stdout, summary); err != nil {
		return err
	}

	if err := report.WriteUserStats(pick(a.opts.output, a.config.Data.AnalysisOutputPath), summary.Users); err != nil {
		return err
	}

	written, err := report.WriteAll(reportDir, summary)
	if err != nil {
		return utils.WrapError(err, "write report tables")
	}

	activity, err := a.database.GetActivityStats()
	if err != nil {
		return utils.WrapError(err, "query activity")
	}
	activityFiles, err := report.WriteActivity(reportDir, activity)
	if err != nil {
		return utils.WrapError(err, "write activity tables")
	}
	written = append(written, activityFiles...)

	if a.opts.export != "" {
		format := report.ExportFormat(a.opts.export)
		ext := ".json"
		if format == report.FormatMarkdown {
			ext = ".md"
		}
		path := filepath.Join(reportDir, "summary"+ext)
		if err := report.Export(path, format, summary); err != nil {
			return err
		}
		written = append(written, path)
	}

	a.logger.Info("Wrote %d report files to %s", len(written), reportDir)
	return nil
}

func (a *app) merge(inputs []string) error {
	output := pick(a.opts.output, a.config.Data.APIOutputPath)
	if utils.FileExists(output) {
		backup := output + ".bak"
		if err := utils.CopyFile(output, backup); err != nil {
			return err
		}
		a.logger.Info("Backed up %s to %s", output, backup)
	}
	n, err := pipeline.MergeCheckpoints(output, inputs...)
	if err != nil {
		return utils.WrapError(err, "merge")
	}
	fmt.Fprintf(a.stdout, "Files %s have been combined and saved to %s (%d records)\n", strings.Join(inputs, ", "), output, n)
	return nil
}

func (a *app) search(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("search needs a term")
	}
	results, err := a.database.SearchRecords(strings.Join(args, " "), a.opts.limit)
	if err != nil {
		return err
	}
	a.printRecords(results)
	return nil
}

// list shows the latest archived records, optionally of one user
func (a *app) list(args []string) error {
	user := ""
	if len(args) > 0 {
		user = args[0]
	}
	records, err := a.database.ListRecords(user)
	if err != nil {
		return err
	}
	if a.opts.limit > 0 && len(records) > a.opts.limit {
		records = records[len(records)-a.opts.limit:]
	}
	a.printRecords(records)
	return nil
}

func (a *app) printRecords(records []pipeline.Record) {
	for _, rec := range records {
		class := "-"
		if rec.Sentiment != nil {
			class = rec.Sentiment.Class.String()
		}
		fmt.Fprintf(a.stdout, "%s  %-12s %-8s %s\n", rec.StrTime(), rec.User, class, rec.Text)
	}
}

func (a *app) history() error {
	runs, err := a.database.ListRuns(a.opts.limit)
	if err != nil {
		return err
	}
	for _, run := range runs {
		fmt.Fprintf(a.stdout, "%s  %-8s %s requested=%d appended=%d fallbacks=%d\n",
			run.CreatedAt.Format(chat.TimeLayout), run.Mode, run.ID, run.Requested, run.Appended, run.Fallbacks)
	}

	stats, err := a.database.GetStats()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Archive: %d records from %d users, %d runs, %d bytes\n",
		stats.RecordCount, stats.UserCount, stats.RunCount, stats.DBSizeBytes)
	return nil
}
