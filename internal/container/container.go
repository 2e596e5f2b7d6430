package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/tour-booking-api/config"
	"github.com/oksasatya/tour-booking-api/internal/domain/event"
	"github.com/oksasatya/tour-booking-api/internal/infrastructure/payment"
	"github.com/oksasatya/tour-booking-api/pkg/helpers"
)

// app-level container to share constructed components across packages.
// The router wires modules from these singletons. Optional infrastructure
// (audit pool, GCS, RabbitMQ, Elasticsearch, Stripe) is nil when disabled.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	mongoDB     *mongo.Database
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsClient   *storage.Client

	jwtManager *helpers.JWTManager
	bus        *event.Bus

	rabbitPub *helpers.RabbitPublisher
	esClient  *elasticsearch.Client
	payments  payment.Gateway
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetMongo(db *mongo.Database)  { mongoDB = db }
func GetMongo() *mongo.Database    { return mongoDB }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetGCS(s *storage.Client)     { gcsClient = s }
func GetGCS() *storage.Client      { return gcsClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

// GetBus returns the event bus, creating it on first use.
func GetBus() *event.Bus {
	if bus == nil {
		bus = event.NewBus(logger)
	}
	return bus
}

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }
func SetPayments(g payment.Gateway)           { payments = g }
func GetPayments() payment.Gateway            { return payments }
