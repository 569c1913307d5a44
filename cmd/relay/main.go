package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"codecounselor/internal/app"
	"codecounselor/internal/auth"
	"codecounselor/internal/config"
	"codecounselor/internal/llm"
	"codecounselor/internal/prompt"
	"codecounselor/pkg/utils"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load environment variables from .env file
	config.LoadEnvFile()

	issueToken := flag.String("issue-token", "", "Print a signed relay access token for the given subject and exit")
	probe := flag.Bool("probe", false, "Send one non-streaming test request upstream and exit")
	flag.Parse()

	cfg := config.Load()
	setupLogging(cfg)

	if *issueToken != "" {
		token, err := auth.NewService(cfg.TokenSecret).IssueToken(*issueToken)
		if err != nil {
			log.WithError(err).Fatal("Failed to issue token")
		}
		fmt.Println(token)
		os.Exit(0)
	}

	template := prompt.Load(cfg.PromptPath)

	var completer llm.Completer
	azure, err := llm.NewAzureClient(cfg)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"endpoint_set":   cfg.Endpoint != "",
			"deployment_set": cfg.DeploymentName != "",
			"api_key_set":    cfg.APIKey != "",
		}).Error("Failed to initialize Azure OpenAI client")
	} else {
		completer = azure
		log.WithFields(log.Fields{
			"endpoint":   cfg.Endpoint,
			"deployment": cfg.DeploymentName,
			"api_key":    utils.MaskToken(cfg.APIKey),
		}).Info("Azure OpenAI client initialized successfully")
	}

	if *probe {
		os.Exit(runProbe(cfg, template, completer))
	}

	a := app.NewApp(cfg, template, completer)
	if a.Auth.Enabled() {
		log.Info("Bearer token auth enabled for /chat and /test-simple")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: a.Router,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("Starting CodeCounselor relay")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Could not start server")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error during server shutdown")
	} else {
		log.Info("Server gracefully stopped")
	}
}

func setupLogging(cfg *config.Config) {
	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetHandler(json.New(os.Stderr))
	} else {
		log.SetHandler(text.New(os.Stderr))
	}

	level, err := log.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if level != log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
}

// runProbe performs the /test-simple check without starting the server and
// returns the process exit code.
func runProbe(cfg *config.Config, template *prompt.Template, completer llm.Completer) int {
	fmt.Println("🩺 CodeCounselor upstream probe")
	fmt.Println("----------------------------")
	fmt.Printf("Endpoint:    %s\n", cfg.Endpoint)
	fmt.Printf("Deployment:  %s\n", cfg.DeploymentName)
	fmt.Printf("API Version: %s\n", cfg.APIVersion)
	fmt.Printf("API Key:     %s\n", utils.MaskToken(cfg.APIKey))
	fmt.Println("----------------------------")

	if completer == nil {
		fmt.Println("❌ Azure OpenAI client not configured. Please check your environment variables.")
		return 1
	}

	service := llm.NewService(completer, template, llm.SettingsFrom(cfg))
	completion, err := service.Probe(context.Background())
	if err != nil {
		d := llm.Classify(err)
		fmt.Printf("❌ %s (%s)\n\n", d.ErrorType, d.Category)
		fmt.Println(strings.Join(d.Lines(service.Settings()), ""))
		return 1
	}

	fmt.Printf("✅ %s\n", completion.Content)
	fmt.Printf("Model: %s, tokens: %d prompt / %d completion\n",
		completion.Model, completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
	return 0
}
