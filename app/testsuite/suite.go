package testsuite

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/sportcore/catalog/app/config"
	"github.com/sportcore/catalog/app/database"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BaseSuite starts a throwaway PostgreSQL container, applies the embedded
// migrations and opens a gorm connection to it.
type BaseSuite struct {
	suite.Suite
	PgContainer *postgres.PostgresContainer
	Postgres    config.Postgres
	DB          *gorm.DB
	Ctx         context.Context
}

func (s *BaseSuite) SetupInfrastructure() {
	if testing.Short() {
		s.T().Skip("skipping integration test in short mode")
	}
	s.Ctx = context.Background()

	var err error
	s.PgContainer, err = postgres.Run(
		s.Ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)

	host, err := s.PgContainer.Host(s.Ctx)
	s.Require().NoError(err)
	port, err := s.PgContainer.MappedPort(s.Ctx, "5432/tcp")
	s.Require().NoError(err)

	s.Postgres = config.Postgres{
		Host:            host,
		Port:            port.Port(),
		User:            "test_user",
		Password:        "test_password",
		DB:              "test_db",
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}

	s.Require().NoError(database.Migrate(s.Postgres, zap.NewNop()))

	s.DB, err = database.Open(s.Ctx, s.Postgres, zap.NewNop())
	s.Require().NoError(err)
}

func (s *BaseSuite) TearDownInfrastructure() {
	if s.DB != nil {
		if err := database.Close(s.DB); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}
	if s.PgContainer != nil {
		if err := s.PgContainer.Terminate(s.Ctx); err != nil {
			log.Printf("Failed to terminate postgres container: %v", err)
		}
	}
}

// TruncateAll empties every catalog table and resets the id sequences.
func (s *BaseSuite) TruncateAll() {
	err := s.DB.Exec("TRUNCATE product_images, products, categories RESTART IDENTITY CASCADE").Error
	s.Require().NoError(err)
}
