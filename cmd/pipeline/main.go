package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/codec"
	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/config"
	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/evidence"
	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/localindex"
	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/logging"
	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/newsapi"
	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/pipeline"
	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/reason"
	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/retrieval"
	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/tao"
	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/wiki"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// #region main
func main() {
	configPath := flag.String("config", os.Getenv("CLAIMCHECK_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Inference client serves both embedding and generation.
	client := codec.NewClient(codec.Config{
		Endpoint:      cfg.CodecEndpoint,
		GenerateModel: cfg.GenerateModel,
		EmbedModel:    cfg.EmbedModel,
	})

	// Generation is optional: an unreachable service degrades the pipeline
	// to Uncertain verdicts instead of failing startup.
	var reasoner *reason.Reasoner
	if client.Available() {
		reasoner = reason.NewReasoner(client)
	} else {
		log.Printf("[MAIN] inference service unreachable at %s, generation disabled", cfg.CodecEndpoint)
	}

	sources := []evidence.Source{
		localindex.New(cfg.IndexPath, client),
		wiki.New(wiki.DefaultConfig()),
		newsapi.New(newsapi.DefaultConfig()),
	}
	retriever := retrieval.NewRetriever(client, sources, retrieval.DefaultConfig())
	engine := tao.NewEngine()

	logDB, err := logging.Open(cfg.LogPath)
	if err != nil {
		log.Printf("[MAIN] verdict log disabled: %v", err)
		logDB = nil
	} else {
		defer logDB.Close()
	}

	pipe := pipeline.NewPipeline(retriever, engine, reasoner, logDB, pipeline.Config{TopK: cfg.TopK})

	fmt.Println("Claim verification pipeline ready.")
	fmt.Printf("  Index: %s | Codec: %s | Log: %s\n", cfg.IndexPath, cfg.CodecEndpoint, cfg.LogPath)
	fmt.Println("Type a claim (or 'quit' to exit):")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		claim := strings.TrimSpace(scanner.Text())
		if claim == "" {
			continue
		}
		if claim == "quit" || claim == "exit" {
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		result := pipe.Analyze(ctx, claim)
		cancel()

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Printf("marshal result: %v", err)
			continue
		}
		fmt.Printf("\n%s\n\n", out)

		stats := engine.Stats()
		fmt.Printf("[tao] updates=%d loss=%.3f steps=%d\n", stats.UpdateCount, stats.CurrentLoss, stats.TotalSteps)
	}
}

// #endregion main
