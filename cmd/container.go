package main

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/hojavida/internal/document"
	"github.com/Abraxas-365/hojavida/internal/migration"
	"github.com/Abraxas-365/hojavida/internal/pdf"
	"github.com/Abraxas-365/hojavida/pkg/config"
	"github.com/Abraxas-365/hojavida/pkg/fsx"
	"github.com/Abraxas-365/hojavida/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/hojavida/pkg/fsx/fsxs3"
	"github.com/Abraxas-365/hojavida/pkg/logx"
	"github.com/Abraxas-365/hojavida/recruitment/applicant/applicantapi"
	"github.com/Abraxas-365/hojavida/recruitment/applicant/applicantinfra"
	"github.com/Abraxas-365/hojavida/recruitment/applicant/applicantsrv"
	"github.com/Abraxas-365/hojavida/recruitment/catalog/catalogapi"
	"github.com/Abraxas-365/hojavida/recruitment/catalog/cataloginfra"
	"github.com/Abraxas-365/hojavida/recruitment/catalog/catalogsrv"
	"github.com/Abraxas-365/hojavida/recruitment/renderjob"
	"github.com/Abraxas-365/hojavida/recruitment/renderjob/renderjobapi"
	"github.com/Abraxas-365/hojavida/recruitment/renderjob/renderjobinfra"
	"github.com/Abraxas-365/hojavida/recruitment/renderjob/renderjobsrv"
	"github.com/Abraxas-365/hojavida/recruitment/renderjob/worker"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Pipeline is the document rendering stack shared by the server and the
// render command
type Pipeline struct {
	Storage   fsx.FileSystem
	Publisher *document.Publisher
	Generator *document.Generator
}

// Container holds all application dependencies
type Container struct {
	Config *config.Config

	// Infrastructure
	DB       *sqlx.DB
	Redis    *redis.Client
	Pipeline *Pipeline
	Queue    renderjob.JobQueue

	// Services
	ApplicantService *applicantsrv.Service
	CatalogService   *catalogsrv.Service
	RenderJobService *renderjobsrv.Service
	RenderWorker     *worker.RenderWorker

	// API Handlers
	ApplicantHandlers *applicantapi.Handlers
	CatalogHandlers   *catalogapi.Handlers
	RenderJobHandlers *renderjobapi.Handlers
}

// NewContainer initializes the dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config) *Container {
	c := &Container{Config: cfg}
	c.initInfrastructure(ctx)
	c.initServices()
	return c
}

func (c *Container) initInfrastructure(ctx context.Context) {
	cfg := c.Config

	// 1. Database Connection
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	c.DB = db

	if cfg.Database.AutoMigrate {
		if err := migration.Apply(ctx, db); err != nil {
			logx.Fatalf("Failed to apply migrations: %v", err)
		}
		logx.Infof("Applied %d migration steps", len(migration.Steps))
	}

	// 2. Redis Connection
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := c.Redis.Ping(ctx).Err(); err != nil {
		logx.Warnf("Failed to connect to Redis: %v", err)
	}

	// 3. Object storage and the rendering pipeline
	pipeline, err := NewPipeline(ctx, cfg)
	if err != nil {
		logx.Fatalf("Failed to build document pipeline: %v", err)
	}
	c.Pipeline = pipeline

	c.Queue = renderjobinfra.NewRedisQueue(c.Redis, cfg.Worker.QueueName)
}

func (c *Container) initServices() {
	cfg := c.Config

	// --- Repositories ---
	applicantRepo := applicantinfra.NewPostgresApplicantRepository(c.DB)
	catalogRepo := cataloginfra.NewCachedRepository(
		cataloginfra.NewPostgresCatalogRepository(c.DB),
		c.Redis,
		cfg.Catalog.CacheTTL,
	)
	jobRepo := renderjobinfra.NewPostgresJobRepository(c.DB)

	// --- Domain Services ---
	c.ApplicantService = applicantsrv.NewService(applicantRepo, c.Pipeline.Generator, c.Pipeline.Publisher)
	c.CatalogService = catalogsrv.NewService(catalogRepo)
	c.RenderJobService = renderjobsrv.NewService(jobRepo, c.Queue, c.ApplicantService, renderjobsrv.Config{
		MaxAttempts: cfg.Worker.MaxAttempts,
	})
	c.RenderWorker = worker.NewRenderWorker(c.RenderJobService, c.Queue, cfg.Worker.Concurrency)

	// --- Handlers ---
	c.ApplicantHandlers = applicantapi.NewHandlers(c.ApplicantService)
	c.CatalogHandlers = catalogapi.NewHandlers(c.CatalogService)
	c.RenderJobHandlers = renderjobapi.NewHandlers(c.RenderJobService)
}

// Close releases the database and Redis connections
func (c *Container) Close() {
	if c.DB != nil {
		c.DB.Close()
	}
	if c.Redis != nil {
		c.Redis.Close()
	}
}

// NewPipeline wires storage, the template source, Chrome and the generator
func NewPipeline(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	storage, signer, err := newStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	return newPipelineWithStorage(cfg, storage, signer), nil
}

func newPipelineWithStorage(cfg *config.Config, storage fsx.FileSystem, signer fsx.URLSigner) *Pipeline {
	publisher := document.NewPublisher(storage, signer, document.PublisherConfig{
		Bucket:     cfg.Storage.Bucket,
		PublicHost: cfg.Storage.PublicHost,
		Prefix:     cfg.Storage.Prefix,
		URLExpiry:  cfg.Storage.SignedURLExpiry,
	})

	engine := document.NewChromeEngine(document.ChromeConfig{
		ExecPath:  cfg.Render.ChromePath,
		NoSandbox: cfg.Render.NoSandbox,
	})
	rasterizer := document.NewRasterizer(engine, document.RasterizerConfig{
		Timeout: cfg.Render.Timeout,
		Print: document.PrintOptions{
			ViewportWidth:  cfg.Render.ViewportWidth,
			ViewportHeight: cfg.Render.ViewportHeight,
			PaperWidthIn:   cfg.Render.PaperWidthIn,
			PaperHeightIn:  cfg.Render.PaperHeightIn,
			MarginIn:       document.MillimetersToInches(cfg.Render.MarginMM),
			IdleSettle:     cfg.Render.IdleSettle,
			GracePeriod:    cfg.Render.GracePeriod,
		},
	})

	renderer := document.NewTemplateRenderer(templateSource(cfg.Render, storage))
	generator := document.NewGenerator(renderer, rasterizer, publisher, document.GeneratorConfig{
		DefaultLogoURL: cfg.Render.DefaultLogoURL,
		RasterRetries:  cfg.Render.RasterRetries,
	})
	if cfg.Render.InspectPages {
		generator = generator.WithPageCounter(pdf.NewInspector())
	}

	return &Pipeline{
		Storage:   storage,
		Publisher: publisher,
		Generator: generator,
	}
}

func templateSource(cfg config.RenderConfig, storage fsx.FileReader) document.TemplateSource {
	switch {
	case cfg.TemplatePath != "":
		return document.FileTemplate(cfg.TemplatePath)
	case cfg.TemplateKey != "":
		return document.StorageTemplate(storage, cfg.TemplateKey)
	default:
		return document.DefaultTemplate()
	}
}

// newStorage returns the configured object store. The local driver cannot
// sign URLs, so its signer is nil.
func newStorage(ctx context.Context, cfg config.StorageConfig) (fsx.FileSystem, fsx.URLSigner, error) {
	if cfg.Driver == config.StorageDriverLocal {
		fs, err := fsxlocal.NewLocalFileSystem(cfg.LocalRoot)
		if err != nil {
			return nil, nil, err
		}
		return fs, nil, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		// S3-interoperable stores reject the newer default checksums
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	fs := fsxs3.NewS3FileSystem(client, cfg.Bucket, cfg.Prefix)
	return fs, fs, nil
}
