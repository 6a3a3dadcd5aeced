package main

import (
	"context"
	"fmt"
	"os"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/cache"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/cli"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/config"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/db"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/intelligence"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/llm"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/logging"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/scheduler"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/service"
)

func main() {
	if err := cli.Run(context.Background(), wire, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// wire opens the profile store and assembles the services for cfg.
func wire(cfg config.Config) (*cli.App, error) {
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	database, err := db.OpenDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	uow := db.NewSQLiteUnitOfWork(database)

	var author intelligence.BriefAuthor = intelligence.TemplateAuthor{}
	if cfg.Brief.Author == config.AuthorLLM {
		var observer llm.Observer = llm.NoopObserver{}
		if cfg.LLM.LogCalls {
			observer = llm.NewLogObserver(log)
		}
		client, err := llm.NewClient(cfg.LLM, observer)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("building llm client: %w", err)
		}
		author = intelligence.NewLLMBriefAuthor(client)
	}

	var advisor scheduler.Advisor = scheduler.NoopAdvisor{}
	if cfg.Advisor.Kind == config.AdvisorDependencyPull {
		advisor = scheduler.DependencyPullAdvisor{}
	}

	observer := service.NewLogUseCaseObserver(log)
	plan := service.NewPlanService(service.PlanDeps{
		UoW:     uow,
		Cache:   cache.New(cfg.Cache.TTL),
		Author:  author,
		Advisor: advisor,
		Log:     log,
	}, service.PlanConfig{
		Planner:           cfg.Planner,
		BriefTimeout:      cfg.Brief.Timeout,
		RationalePageSize: cfg.Cache.RationalePageSize,
	}, observer)

	return &cli.App{
		Config: cfg,
		Log:    log,
		Plan:   plan,
		Import: service.NewImportService(uow, observer),
		Close: func() error {
			log.Sync()
			return database.Close()
		},
	}, nil
}
