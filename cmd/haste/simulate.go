package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gertd/go-pluralize"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/streamingfast/cli"
	"github.com/streamingfast/dmetrics"
	"go.uber.org/zap"

	haste "github.com/benblamey/HasteStorageClient"
	"github.com/benblamey/HasteStorageClient/interest"
	"github.com/benblamey/HasteStorageClient/metrics"
	"github.com/benblamey/HasteStorageClient/orchestrator"
	"github.com/benblamey/HasteStorageClient/storage"
	"github.com/benblamey/HasteStorageClient/triage"
)

func init() {
	simulateCmd.Flags().String("mode", "splines", "Queue mode, one of: splines, natural, golden")
	simulateCmd.Flags().Int("capacity", 300, "Maximum number of documents accepted by the queue for the session")
	simulateCmd.Flags().Int("documents", 0, "Number of synthetic documents to produce, defaults to --capacity")
	simulateCmd.Flags().Int("block-size", triage.DefaultBlockSize, "Size of the blocks sampled by the splines search phase")
	simulateCmd.Flags().Float64("period", 50, "Period, in documents, of the synthetic golden interestingness")
	simulateCmd.Flags().Int("blob-size", 64*1024, "Size in bytes of each synthetic blob")

	simulateCmd.Flags().Int("preprocess-workers", orchestrator.DefaultPreprocessWorkers, "Number of concurrent preprocessing workers")
	simulateCmd.Flags().Int("send-workers", orchestrator.DefaultSendWorkers, "Number of concurrent sending workers")
	simulateCmd.Flags().Duration("produce-interval", 10*time.Millisecond, "Delay between two synthetic documents")
	simulateCmd.Flags().Duration("preprocess-duration", 20*time.Millisecond, "Simulated preprocessing time per document")
	simulateCmd.Flags().Duration("send-duration", 30*time.Millisecond, "Simulated uplink time per document")
	simulateCmd.Flags().Duration("info-interval", orchestrator.DefaultInfoInterval, "Interval between two queue info log lines")

	simulateCmd.Flags().String("model", "golden", "Interestingness model, one of: golden, random, rest, none")
	simulateCmd.Flags().String("model-url", "", "URL of the interestingness model, required by --model=rest")
	simulateCmd.Flags().Uint64("model-retries", 2, "Retries of a failed interestingness model call")

	simulateCmd.Flags().String("stream-id", "", "Stream ID, a random one is generated when empty")
	simulateCmd.Flags().String("store-url", "file:///tmp/haste/blobs", "Object store receiving every blob, ignored when the session file configures storage")
	simulateCmd.Flags().String("metadata-url", "file:///tmp/haste/metadata", "Object store receiving metadata documents, empty disables them")
	simulateCmd.Flags().String("session-file", "", "YAML session file with the stream ID and storage policy")
	simulateCmd.Flags().String("metrics-listen-addr", "", "If non-empty, serve prometheus metrics on this address")

	rootCmd.AddCommand(simulateCmd)
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a streaming session over a synthetic stream",
	Long: cli.Dedent(`
		Run a complete session over a synthetic stream whose true interestingness
		is a cosine wave. Documents are produced at a fixed rate, preprocessed and
		scored by the configured model then sent to storage, with the queue mode
		deciding the order. Compare modes by looking at the interestingness of
		what got preprocessed before being sent.
	`),
	Example: cli.Dedent(`
		haste simulate --mode=golden --capacity=100
		haste simulate --mode=splines --preprocess-workers=2 --session-file=./session.yaml
	`),
	RunE:         runSimulate,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mode, err := triage.ParseMode(mustGetString(cmd, "mode"))
	if err != nil {
		return err
	}

	capacity := mustGetInt(cmd, "capacity")
	if capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", capacity)
	}
	docCount := mustGetInt(cmd, "documents")
	if docCount <= 0 {
		docCount = capacity
	}

	streamID := mustGetString(cmd, "stream-id")
	storageConfig := defaultStorageConfig(mustGetString(cmd, "store-url"), mustGetString(cmd, "metadata-url"))
	if path := mustGetString(cmd, "session-file"); path != "" {
		sf, err := loadSessionFile(path)
		if err != nil {
			return err
		}
		if streamID == "" {
			streamID = sf.StreamID
		}
		if sf.Storage != nil {
			storageConfig = sf.Storage
		}
	}
	if streamID == "" {
		streamID = uuid.NewString()
	}

	router, err := storage.NewRouterFromConfig(storageConfig, zlog)
	if err != nil {
		return fmt.Errorf("setting up storage: %w", err)
	}
	defer router.Close()

	scorer, err := newScorer(mustGetString(cmd, "model"), mustGetString(cmd, "model-url"), mustGetUint64(cmd, "model-retries"))
	if err != nil {
		return err
	}

	baseline := goldenBaseline(max(docCount, capacity), mustGetFloat64(cmd, "period"))
	queueConfig := triage.Config{
		Capacity:  capacity,
		Mode:      mode,
		BlockSize: mustGetInt(cmd, "block-size"),
		Logger:    zlog,
	}
	switch mode {
	case triage.ModeGolden:
		queueConfig.Baseline = baseline[:capacity]
	case triage.ModeSplines:
		queueConfig.Estimator = interest.SplineEstimator{}
	}

	queue, err := triage.New(queueConfig)
	if err != nil {
		return err
	}

	if addr := mustGetString(cmd, "metrics-listen-addr"); addr != "" {
		serveMetrics(addr)
	}

	preprocessDuration := mustGetDuration(cmd, "preprocess-duration")
	preprocess := func(ctx context.Context, doc *haste.Document) (*haste.Document, error) {
		if !sleep(ctx, preprocessDuration) {
			return nil, ctx.Err()
		}
		out := *doc
		out.Metadata = maps.Clone(doc.Metadata)
		out.Metadata["preprocessed"] = true
		return &out, nil
	}

	sendDuration := mustGetDuration(cmd, "send-duration")
	send := func(ctx context.Context, doc *haste.Document, interestingness float64) error {
		if !sleep(ctx, sendDuration) {
			return ctx.Err()
		}
		return router.Send(ctx, doc, interestingness)
	}

	session, err := orchestrator.NewSession(queue, preprocess, scorer, send, orchestrator.Config{
		PreprocessWorkers: mustGetInt(cmd, "preprocess-workers"),
		SendWorkers:       mustGetInt(cmd, "send-workers"),
		InfoInterval:      mustGetDuration(cmd, "info-interval"),
		Logger:            zlog,
	})
	if err != nil {
		return err
	}

	zlog.Info("simulating stream",
		zap.String("stream_id", streamID),
		zap.Stringer("mode", mode),
		zap.Int("documents", docCount),
		zap.Int("capacity", capacity),
		zap.Strings("targets", storageTargetIDs(storageConfig)),
	)

	docs := syntheticDocuments(streamID, baseline[:docCount], mustGetInt(cmd, "blob-size"))
	err = session.Run(ctx, feedDocuments(ctx, docs, mustGetDuration(cmd, "produce-interval")))
	if summary := session.Summary(); summary != nil {
		printSummary(streamID, mode, summary)
	}
	if errors.Is(err, context.Canceled) {
		fmt.Println("Session interrupted")
		return nil
	}
	return err
}

func newScorer(model string, modelURL string, retries uint64) (interest.Scorer, error) {
	switch model {
	case "golden":
		return interest.MetadataField(goldenMetadataKey), nil
	case "random":
		return interest.RandomModel{}, nil
	case "rest":
		m, err := interest.NewRestModel(modelURL, retries, zlog)
		if err != nil {
			return nil, fmt.Errorf("setting up rest model: %w", err)
		}
		return m, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown model %q, expected one of: golden, random, rest, none", model)
	}
}

func storageTargetIDs(config *storage.Config) (out []string) {
	for _, t := range config.Targets {
		out = append(out, t.ID)
	}
	return
}

func serveMetrics(addr string) {
	dmetrics.Register(metrics.Metricset)

	go func() {
		zlog.Info("serving prometheus metrics", zap.String("listen_addr", addr))
		if err := http.ListenAndServe(addr, promhttp.Handler()); err != nil {
			zlog.Warn("metrics server stopped", zap.String("listen_addr", addr), zap.Error(err))
		}
	}()
}

func printSummary(streamID string, mode triage.Mode, summary *orchestrator.Summary) {
	fmt.Printf("Stream %s (%s mode) completed in %s\n", streamID, mode, summary.Duration.Round(time.Millisecond))
	fmt.Printf("  Submitted:    %s (%s rejected)\n", documents(summary.Submitted), humanize.Comma(int64(summary.Rejected)))
	fmt.Printf("  Preprocessed: %s\n", documents(summary.Preprocessed))
	fmt.Printf("  Sent:         %s (%s shed), %s\n", documents(summary.Sent), humanize.Comma(int64(summary.Shed)), humanize.Bytes(summary.SentBytes))
}

var pluralizer = pluralize.NewClient()

func documents(count uint64) string {
	return humanize.Comma(int64(count)) + " " + pluralizer.Pluralize("document", int(count), false)
}
