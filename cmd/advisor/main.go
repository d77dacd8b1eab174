// cmd/advisor/main.go
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"finsync-advisor/internal/common/aws"
	"finsync-advisor/internal/common/config"
	"finsync-advisor/internal/common/database"
	apperrors "finsync-advisor/internal/common/errors"
	"finsync-advisor/internal/common/logger"
	"finsync-advisor/internal/common/observability"
	"finsync-advisor/internal/services/crm"
	"finsync-advisor/internal/services/docs"
	"finsync-advisor/internal/services/export"
	"finsync-advisor/internal/services/llm"
	"finsync-advisor/internal/services/notify"
	"finsync-advisor/internal/session"
	"finsync-advisor/internal/underwriting"
	"finsync-advisor/pkg/registry"
)

func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting loan advisor...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	var tracing *observability.Tracing
	if cfg.App.TracingEndpoint != "" {
		tracing, err = observability.NewTracing(cfg.App.Name, cfg.App.TracingEndpoint)
		if err != nil {
			zapLog.Warn("tracing init failed, continuing without it", zap.Error(err))
			tracing = nil
		} else {
			defer tracing.Shutdown()
		}
	}

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Product catalog ---
	catalog, err := registry.Load(cfg.Catalog.RegistryPath)
	if err != nil {
		zapLog.Fatal("product catalog load failed", zap.Error(err))
	}
	zapLog.Info("Product catalog loaded", zap.Int("products", len(catalog.Products())))

	// --- Notification clients (optional) ---
	var notifier session.Deliverer
	if cfg.Integrations.AWS.SES.Enabled || cfg.Integrations.AWS.SNS.Enabled {
		var sesClient *aws.SESClient
		var snsClient *aws.SNSClient
		if cfg.Integrations.AWS.SES.Enabled {
			sesClient, err = aws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
			if err != nil {
				zapLog.Fatal("ses client init failed", zap.Error(err))
			}
		}
		if cfg.Integrations.AWS.SNS.Enabled {
			snsClient, err = aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
			if err != nil {
				zapLog.Fatal("sns client init failed", zap.Error(err))
			}
		}
		notifier = notify.NewNotifier(notify.Config{
			FromEmail:    cfg.Integrations.AWS.SES.FromEmail,
			EmailEnabled: cfg.Integrations.AWS.SES.Enabled,
			SMSEnabled:   cfg.Integrations.AWS.SNS.Enabled,
			SMSSenderID:  cfg.Integrations.AWS.SNS.DefaultSMSSenderID,
		}, sesClient, snsClient, log)
		zapLog.Info("Notification clients initialized")
	}

	// --- LLM phraser (optional) ---
	var phraser session.Phraser
	if cfg.APIs.GenAI.APIKey != "" {
		client, err := llm.NewClient(ctx, cfg.APIs.GenAI.APIKey, cfg.APIs.GenAI.Model,
			time.Duration(cfg.APIs.GenAI.Timeout)*time.Millisecond, log)
		if err != nil {
			zapLog.Warn("llm client init failed, replies stay templated", zap.Error(err))
		} else {
			defer client.Close()
			phraser = client
			zapLog.Info("LLM phraser initialized", zap.String("model", cfg.APIs.GenAI.Model))
		}
	}

	// --- Remote underwriting (optional) ---
	var remote session.Underwriter
	if cfg.Advisor.RemoteUnderwritingURL != "" {
		remote = underwriting.NewRemoteEvaluator(cfg.Advisor.RemoteUnderwritingURL,
			time.Duration(cfg.Advisor.RemoteTimeout)*time.Millisecond)
		zapLog.Info("Remote underwriting enabled", zap.String("url", cfg.Advisor.RemoteUnderwritingURL))
	}

	engine := session.NewEngine(session.Config{
		FallbackCreditScore: cfg.Advisor.FallbackCreditScore,
	}, session.Dependencies{
		Store:     session.NewStore(redis.GetClient(), time.Duration(cfg.Session.TTLMinutes)*time.Minute, log),
		Auditor:   session.NewAuditor(esClient.Client, cfg.Session.AuditIndex, log),
		Directory: crm.NewStore(pg.GetDB(), log),
		Remote:    remote,
		Docs:      docs.NewAnalyzer(cfg.Advisor.IncomeTolerancePct, log),
		Notifier:  notifier,
		Exporter:  export.NewExporter("exports", log),
		Phraser:   phraser,
		Catalog:   catalog,
		Logger:    log,
	})

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("addr", cfg.App.MetricsAddr))
		if err := http.ListenAndServe(cfg.App.MetricsAddr, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Interactive demo loop ---
	done := make(chan struct{})
	go func() {
		defer close(done)
		runDemoLoop(ctx, engine, apperrors.NewErrorHandler(log), obs, tracing)
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
		zapLog.Info("Shutdown signal received")
	case <-done:
	}

	zapLog.Info("Loan advisor stopped gracefully")
}

// runDemoLoop is a stdin/stdout conversation for trying the advisor
// without any frontend. "/doc <path>" feeds a salary-slip text file into
// document verification; "exit" or EOF ends the session.
func runDemoLoop(ctx context.Context, engine *session.Engine, errHandler *apperrors.ErrorHandler,
	obs *observability.Observability, tracing *observability.Tracing) {
	sessionID := fmt.Sprintf("demo-%d", time.Now().Unix())
	fmt.Printf("FinSync AI loan advisor (session %s). Type 'exit' to quit.\n\n", sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return
		}

		turnCtx := ctx
		var span trace.Span
		if tracing != nil {
			turnCtx, span = tracing.StartTurnSpan(ctx, sessionID, "turn")
		}

		started := time.Now()
		var result *session.TurnResult
		var err error
		if path, ok := strings.CutPrefix(input, "/doc "); ok {
			data, readErr := os.ReadFile(strings.TrimSpace(path))
			if readErr != nil {
				if span != nil {
					span.End()
				}
				fmt.Printf("could not read %s: %v\n", path, readErr)
				continue
			}
			result, err = engine.ProcessDocument(turnCtx, sessionID, string(data))
		} else {
			result, err = engine.ProcessTurn(turnCtx, sessionID, input)
		}
		if span != nil {
			span.End()
		}
		if err != nil {
			stdErr := errHandler.HandleTurnError(sessionID, err)
			if stdErr.Retryable {
				fmt.Println("advisor> Something went wrong on my side. Please try that again.")
			} else {
				fmt.Println("advisor> Something went wrong on my side. Please start a new session.")
			}
			continue
		}

		obs.RecordTurnProcessed(turnCtx, string(result.State))
		obs.RecordTurnDuration(turnCtx, time.Since(started), string(result.State))

		fmt.Printf("advisor [%s]> %s\n\n", result.State, result.Reply)
	}
}
