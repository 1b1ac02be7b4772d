package factory

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"shelftrack/internal/config"
	"shelftrack/internal/domain"
	"shelftrack/internal/repository"
	"shelftrack/internal/service"
	"shelftrack/pkg/database"
	"shelftrack/pkg/logger"
	"shelftrack/pkg/redis"
	"shelftrack/pkg/storage"
)

type Factory interface {
	GetLogger() logger.Logger
	GetConfig() *config.Config
	GetDB() *sqlx.DB
	GetRedisClient() *redis.Client
	GetCoverStore() storage.Store

	GetUserRepository() domain.UserRepository
	GetTokenRepository() domain.TokenRepository
	GetCategoryRepository() domain.CategoryRepository
	GetBookRepository() domain.BookRepository
	GetBorrowingRepository() domain.BorrowingRepository
	GetReportRepository() domain.ReportRepository
	GetAuditLogRepository() domain.AuditLogRepository

	GetAuthService() domain.AuthService
	GetMemberService() domain.MemberService
	GetCatalogService() domain.CatalogService
	GetLoanService() domain.LoanService
	GetReportService() domain.ReportService
	GetAuditLogService() domain.AuditLogService
}

type AppFactory struct {
	config      *config.Config
	logger      logger.Logger
	db          *sqlx.DB
	redisClient *redis.Client
	coverStore  storage.Store

	userRepository      domain.UserRepository
	tokenRepository     domain.TokenRepository
	categoryRepository  domain.CategoryRepository
	bookRepository      domain.BookRepository
	borrowingRepository domain.BorrowingRepository
	reportRepository    domain.ReportRepository
	auditLogRepository  domain.AuditLogRepository

	authService     domain.AuthService
	memberService   domain.MemberService
	catalogService  domain.CatalogService
	loanService     domain.LoanService
	reportService   domain.ReportService
	auditLogService domain.AuditLogService
}

func NewFactory() (Factory, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.LogLevel(cfg.LogLevel), nil)

	db, err := database.Open(cfg.Database.Path, log)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	redisClient, err := redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	coverStore, err := storage.NewDiskStore(cfg.Storage.Dir, log)
	if err != nil {
		return nil, fmt.Errorf("preparing asset storage: %w", err)
	}

	factory := &AppFactory{
		config:      cfg,
		logger:      log,
		db:          db,
		redisClient: redisClient,
		coverStore:  coverStore,
	}

	factory.initRepositories()
	factory.initServices()

	return factory, nil
}

func (f *AppFactory) initRepositories() {
	f.userRepository = repository.NewUserRepository(f.db, f.logger)
	f.tokenRepository = repository.NewTokenRepository(f.redisClient, f.logger)
	f.categoryRepository = repository.NewCategoryRepository(f.db, f.logger)
	f.bookRepository = repository.NewBookRepository(f.db, f.logger)
	f.borrowingRepository = repository.NewBorrowingRepository(f.db, f.logger)
	f.reportRepository = repository.NewReportRepository(f.db, f.logger)
	f.auditLogRepository = repository.NewAuditLogRepository(f.db, f.logger)
}

func (f *AppFactory) initServices() {
	f.auditLogService = service.NewAuditLogService(f.auditLogRepository, f.logger)

	f.authService = service.NewAuthService(
		f.userRepository,
		f.tokenRepository,
		f.auditLogService,
		f.config.Auth.TokenTTL,
		f.logger,
	)
	f.memberService = service.NewMemberService(f.userRepository, f.borrowingRepository, f.auditLogService, f.logger)
	f.catalogService = service.NewCatalogService(
		f.categoryRepository,
		f.bookRepository,
		f.coverStore,
		f.auditLogService,
		f.logger,
	)
	f.loanService = service.NewLoanService(
		f.borrowingRepository,
		f.bookRepository,
		f.userRepository,
		f.auditLogService,
		f.logger,
	)
	f.reportService = service.NewReportService(f.reportRepository, f.logger)
}

func (f *AppFactory) GetLogger() logger.Logger      { return f.logger }
func (f *AppFactory) GetConfig() *config.Config     { return f.config }
func (f *AppFactory) GetDB() *sqlx.DB               { return f.db }
func (f *AppFactory) GetRedisClient() *redis.Client { return f.redisClient }
func (f *AppFactory) GetCoverStore() storage.Store  { return f.coverStore }

func (f *AppFactory) GetUserRepository() domain.UserRepository         { return f.userRepository }
func (f *AppFactory) GetTokenRepository() domain.TokenRepository       { return f.tokenRepository }
func (f *AppFactory) GetCategoryRepository() domain.CategoryRepository { return f.categoryRepository }
func (f *AppFactory) GetBookRepository() domain.BookRepository         { return f.bookRepository }
func (f *AppFactory) GetBorrowingRepository() domain.BorrowingRepository {
	return f.borrowingRepository
}
func (f *AppFactory) GetReportRepository() domain.ReportRepository     { return f.reportRepository }
func (f *AppFactory) GetAuditLogRepository() domain.AuditLogRepository { return f.auditLogRepository }

func (f *AppFactory) GetAuthService() domain.AuthService         { return f.authService }
func (f *AppFactory) GetMemberService() domain.MemberService     { return f.memberService }
func (f *AppFactory) GetCatalogService() domain.CatalogService   { return f.catalogService }
func (f *AppFactory) GetLoanService() domain.LoanService         { return f.loanService }
func (f *AppFactory) GetReportService() domain.ReportService     { return f.reportService }
func (f *AppFactory) GetAuditLogService() domain.AuditLogService { return f.auditLogService }
