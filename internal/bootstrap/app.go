package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"cvpilot-backend/internal/analyses"
	googleauth "cvpilot-backend/internal/auth"
	"cvpilot-backend/internal/coverletters"
	"cvpilot-backend/internal/credits"
	"cvpilot-backend/internal/extract"
	"cvpilot-backend/internal/jobmatches"
	"cvpilot-backend/internal/llm"
	openai "cvpilot-backend/internal/llm/openai"
	"cvpilot-backend/internal/optimizedcvs"
	"cvpilot-backend/internal/shared/config"
	"cvpilot-backend/internal/shared/server"
	"cvpilot-backend/internal/shared/storage/db"
	"cvpilot-backend/internal/shared/storage/object"
	localstore "cvpilot-backend/internal/shared/storage/object/local"
	s3store "cvpilot-backend/internal/shared/storage/object/s3"
	"cvpilot-backend/internal/uploads"
	"cvpilot-backend/internal/users"
)

// App holds shared dependencies built from configuration.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	AnalysesRepo    analyses.Repo
	CoverLetterRepo coverletters.Repo
	JobMatchRepo    jobmatches.Repo
	OptimizedRepo   optimizedcvs.Repo
	UsersRepo       users.Repo

	CreditsService     *credits.Service
	AnalysesService    *analyses.Service
	CoverLetterService *coverletters.Service
	JobMatchService    *jobmatches.Service
	OptimizeService    *optimizedcvs.Service
	UsersService       *users.Service

	UploadHandler      *uploads.Handler
	AnalysisHandler    *analyses.Handler
	CoverLetterHandler *coverletters.Handler
	JobMatchHandler    *jobmatches.Handler
	OptimizeHandler    *optimizedcvs.Handler
	CreditsHandler     *credits.Handler
	UsersHandler       *users.Handler
	GoogleAuth         *googleauth.GoogleService
}

// Build prepares all application dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             app.Config,
		UploadHandler:      app.UploadHandler,
		AnalysisHandler:    app.AnalysisHandler,
		CoverLetterHandler: app.CoverLetterHandler,
		JobMatchHandler:    app.JobMatchHandler,
		OptimizeHandler:    app.OptimizeHandler,
		CreditsHandler:     app.CreditsHandler,
		UsersHandler:       app.UsersHandler,
		GoogleAuth:         app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var analysisRepo analyses.Repo
	var letterRepo coverletters.Repo
	var matchRepo jobmatches.Repo
	var optimizedRepo optimizedcvs.Repo
	var userRepo users.Repo
	var creditsSvc *credits.Service

	if app.DB != nil {
		analysisRepo = analyses.NewPGRepo(app.DB)
		letterRepo = coverletters.NewPGRepo(app.DB)
		matchRepo = jobmatches.NewPGRepo(app.DB)
		optimizedRepo = optimizedcvs.NewPGRepo(app.DB)
		userRepo = &users.PGRepo{DB: app.DB}
		creditsSvc = credits.NewPostgresService(credits.NewPGStore(app.DB, app.Config.InitialCredits))
	} else {
		analysisRepo = analyses.NewMemoryRepo()
		letterRepo = coverletters.NewMemoryRepo()
		matchRepo = jobmatches.NewMemoryRepo()
		optimizedRepo = optimizedcvs.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
		creditsSvc = credits.NewService(app.Config.InitialCredits)
	}

	generator, err := buildGenerator(app.Config)
	if err != nil {
		return err
	}
	extractor, err := buildExtractor(app.Config)
	if err != nil {
		return err
	}

	analysisSvc := &analyses.Service{
		Repo:      analysisRepo,
		Store:     app.Store,
		Extractor: extractor,
		Generator: generator,
		Credits:   creditsSvc,
	}

	analysisSource := analysisSourceAdapter{repo: analysisRepo}

	letterSvc := &coverletters.Service{
		Repo:      letterRepo,
		Source:    analysisSource,
		Store:     app.Store,
		Extractor: extractor,
		Generator: generator,
		Credits:   creditsSvc,
	}

	matchSvc := &jobmatches.Service{
		Repo:          matchRepo,
		Source:        jobMatchAnalysisSource{repo: analysisRepo},
		Optimizations: optimizationRefAdapter{repo: optimizedRepo},
		Store:         app.Store,
		Extractor:     extractor,
		Generator:     generator,
		Credits:       creditsSvc,
	}

	optimizeSvc := &optimizedcvs.Service{
		Repo:      optimizedRepo,
		Source:    jobMatchSourceAdapter{matches: matchRepo, analyses: analysisRepo},
		Store:     app.Store,
		Extractor: extractor,
		Generator: generator,
		Credits:   creditsSvc,
	}

	userSvc := users.NewService(userRepo)
	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	app.AnalysesRepo = analysisRepo
	app.CoverLetterRepo = letterRepo
	app.JobMatchRepo = matchRepo
	app.OptimizedRepo = optimizedRepo
	app.UsersRepo = userRepo
	app.CreditsService = creditsSvc
	app.AnalysesService = analysisSvc
	app.CoverLetterService = letterSvc
	app.JobMatchService = matchSvc
	app.OptimizeService = optimizeSvc
	app.UsersService = userSvc
	app.UploadHandler = uploads.NewHandler(app.Store, analysisSvc)
	app.AnalysisHandler = analyses.NewHandler(analysisSvc)
	app.CoverLetterHandler = coverletters.NewHandler(letterSvc)
	app.JobMatchHandler = jobmatches.NewHandler(matchSvc)
	app.OptimizeHandler = optimizedcvs.NewHandler(optimizeSvc)
	app.CreditsHandler = credits.NewHandler(creditsSvc)
	app.UsersHandler = users.NewHandler(userSvc)
	app.GoogleAuth = googleAuthSvc

	return nil
}

func buildGenerator(cfg config.Config) (llm.Generator, error) {
	generator := llm.Generator(llm.PlaceholderGenerator{})
	if cfg.LLMProvider == "openai" {
		client, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), cfg.LLMModel)
		if err != nil {
			return nil, err
		}
		generator = client
	}
	return llm.NewBreakerGenerator(generator, llm.BreakerSettings{
		Enabled:      cfg.BreakerEnabled,
		MinRequests:  cfg.BreakerMinRequests,
		FailureRatio: cfg.BreakerFailureRatio,
		OpenTimeout:  cfg.BreakerOpenTimeout,
	}), nil
}

func buildExtractor(cfg config.Config) (llm.Extractor, error) {
	switch cfg.ExtractorType {
	case "local":
		return extract.NewPDFExtractor(), nil
	default:
		return openai.NewExtractor(os.Getenv("OPENAI_API_KEY"), cfg.LLMModel, cfg.ExtractPollInterval, cfg.ExtractPollAttempts)
	}
}

type analysisSourceAdapter struct {
	repo analyses.Repo
}

func (a analysisSourceAdapter) Lookup(ctx context.Context, analysisID string) (coverletters.SourceAnalysis, error) {
	rec, err := a.repo.GetByID(ctx, analysisID)
	if err != nil {
		if errors.Is(err, analyses.ErrNotFound) {
			return coverletters.SourceAnalysis{}, coverletters.ErrSourceNotFound
		}
		return coverletters.SourceAnalysis{}, err
	}
	return coverletters.SourceAnalysis{
		ID:         rec.ID,
		UserID:     rec.UserID,
		FileName:   rec.FileName,
		StorageKey: rec.StorageKey,
		Status:     rec.Status,
	}, nil
}

// jobmatches needs the same lookup under its own type.
type jobMatchAnalysisSource struct {
	repo analyses.Repo
}

func (a jobMatchAnalysisSource) Lookup(ctx context.Context, analysisID string) (jobmatches.SourceAnalysis, error) {
	rec, err := a.repo.GetByID(ctx, analysisID)
	if err != nil {
		if errors.Is(err, analyses.ErrNotFound) {
			return jobmatches.SourceAnalysis{}, jobmatches.ErrSourceNotFound
		}
		return jobmatches.SourceAnalysis{}, err
	}
	return jobmatches.SourceAnalysis{
		ID:         rec.ID,
		UserID:     rec.UserID,
		FileName:   rec.FileName,
		StorageKey: rec.StorageKey,
		Status:     rec.Status,
	}, nil
}

type jobMatchSourceAdapter struct {
	matches  jobmatches.Repo
	analyses analyses.Repo
}

func (a jobMatchSourceAdapter) Lookup(ctx context.Context, jobMatchID string) (optimizedcvs.SourceJobMatch, error) {
	jm, err := a.matches.GetByID(ctx, jobMatchID)
	if err != nil {
		if errors.Is(err, jobmatches.ErrNotFound) {
			return optimizedcvs.SourceJobMatch{}, optimizedcvs.ErrSourceNotFound
		}
		return optimizedcvs.SourceJobMatch{}, err
	}
	cv, err := a.analyses.GetByID(ctx, jm.CVAnalysisID)
	if err != nil {
		if errors.Is(err, analyses.ErrNotFound) {
			return optimizedcvs.SourceJobMatch{}, optimizedcvs.ErrSourceNotFound
		}
		return optimizedcvs.SourceJobMatch{}, err
	}
	return optimizedcvs.SourceJobMatch{
		ID:                jm.ID,
		UserID:            jm.UserID,
		Status:            jm.Status,
		JobTitle:          jm.JobTitle,
		CompanyName:       jm.CompanyName,
		JobDescription:    jm.JobDescription,
		MatchScore:        jm.MatchScore,
		MissingSkills:     jm.MissingSkills,
		ExistingStrengths: jm.ExistingStrengths,
		Recommendations:   jm.Recommendations,
		CVFileName:        cv.FileName,
		CVStorageKey:      cv.StorageKey,
	}, nil
}

// optimizationRefAdapter surfaces the optimized CV linked to a job match so
// the job match detail view can reference it.
type optimizationRefAdapter struct {
	repo optimizedcvs.Repo
}

func (a optimizationRefAdapter) OptimizedCVID(ctx context.Context, jobMatchID string) (string, bool, error) {
	o, err := a.repo.GetByJobMatch(ctx, jobMatchID)
	if err != nil {
		if errors.Is(err, optimizedcvs.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return o.ID, true, nil
}
