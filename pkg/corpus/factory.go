package corpus

import (
	"context"
	"fmt"

	"github.com/foliokit/sage/pkg/corpus/consts"
	"github.com/foliokit/sage/pkg/corpus/file"
	mongocorpus "github.com/foliokit/sage/pkg/corpus/mongo"
	"github.com/foliokit/sage/pkg/corpus/mssql"
	"github.com/foliokit/sage/pkg/corpus/mysql"
	"github.com/foliokit/sage/pkg/corpus/neo4j"
	"github.com/foliokit/sage/pkg/corpus/postgres"
	"github.com/foliokit/sage/pkg/corpus/redis"
	"github.com/foliokit/sage/pkg/corpus/sqlite"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Type string

const (
	TypeFile     Type = "file"
	TypeSQLite   Type = "sqlite"
	TypePostgres Type = "postgres"
	TypeMySQL    Type = "mysql"
	TypeMSSQL    Type = "mssql"
	TypeRedis    Type = "redis"
	TypeNeo4j    Type = "neo4j"
	TypeMongo    Type = "mongo"
)

// Store combines Source and Sink: the batch job writes the corpus,
// the service fetches it once at startup.
type Store interface {
	Source
	Sink
}

// Config holds configuration for corpus adapters.
type Config struct {
	Type             Type
	Path             string // file adapter
	ConnectionString string
	Username         string
	Password         string
	DBName           string
}

// NewFactory creates a new corpus adapter based on the configuration.
func NewFactory(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Type {
	case TypeFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("file corpus requires a path")
		}
		return file.New(cfg.Path), nil

	case TypeSQLite:
		return sqlite.New(cfg.ConnectionString)

	case TypePostgres:
		return postgres.New(cfg.ConnectionString)

	case TypeMySQL:
		return mysql.New(cfg.ConnectionString)

	case TypeMSSQL:
		return mssql.New(cfg.ConnectionString)

	case TypeRedis:
		opts, err := goredis.ParseURL(cfg.ConnectionString)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		client := goredis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		return redis.New(client, consts.RedisKeyCorpus), nil

	case TypeNeo4j:
		dbName := "neo4j" // Neo4j's default database
		if cfg.DBName != "" {
			dbName = cfg.DBName
		}
		return neo4j.New(cfg.ConnectionString, cfg.Username, cfg.Password, dbName)

	case TypeMongo:
		opts := options.Client().ApplyURI(cfg.ConnectionString)
		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			return nil, fmt.Errorf("failed to ping mongo: %w", err)
		}
		dbName := consts.DefaultDBName
		if cfg.DBName != "" {
			dbName = cfg.DBName
		}
		return mongocorpus.New(client, dbName, consts.TableNameRecords), nil

	default:
		return nil, fmt.Errorf("unsupported corpus type: %s", cfg.Type)
	}
}
