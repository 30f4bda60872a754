package backends

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"

	"invoicer/internal/backends/ddb"
	"invoicer/internal/backends/memory"
	"invoicer/internal/backends/sqlite"
	"invoicer/internal/config"
	"invoicer/internal/ports"
	"invoicer/internal/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	redisbackend "invoicer/internal/backends/redis"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendDDB    = "ddb"
	BackendMemory = "memory"
)

const AmazonRootCA1PEM = `-----BEGIN CERTIFICATE-----
MIIDQTCCAimgAwIBAgITBmyfz5m/jAo54vB4ikPmljZbyjANBgkqhkiG9w0BAQsF
ADA5MQswCQYDVQQGEwJVUzEPMA0GA1UEChMGQW1hem9uMRkwFwYDVQQDExBBbWF6
b24gUm9vdCBDQSAxMB4XDTE1MDUyNjAwMDAwMFoXDTM4MDExNzAwMDAwMFowOTEL
MAkGA1UEBhMCVVMxDzANBgNVBAoTBkFtYXpvbjEZMBcGA1UEAxMQQW1hem9uIFJv
b3QgQ0EgMTCCASIwDQYJKoZIhvcNAQEBBQADggEPADCCAQoCggEBALJ4gHHKeNXj
ca9HgFB0fW7Y14h29Jlo91ghYPl0hAEvrAIthtOgQ3pOsqTQNroBvo3bSMgHFzZM
9O6II8c+6zf1tRn4SWiw3te5djgdYZ6k/oI2peVKVuRF4fn9tBb6dNqcmzU5L/qw
IFAGbHrQgLKm+a/sRxmPUDgH3KKHOVj4utWp+UhnMJbulHheb4mjUcAwhmahRWa6
VOujw5H5SNz/0egwLX0tdHA114gk957EWW67c4cX8jJGKLhD+rcdqsq08p8kDi1L
93FcXmn/6pUCyziKrlA4b9v7LWIbxcceVOF34GfID5yHI9Y/QCB/IIDEgEw+OyQm
jgSubJrIqg0CAwEAAaNCMEAwDwYDVR0TAQH/BAUwAwEB/zAOBgNVHQ8BAf8EBAMC
AYYwHQYDVR0OBBYEFIQYzIU07LwMlJQuCFmcx7IQTgoIMA0GCSqGSIb3DQEBCwUA
A4IBAQCY8jdaQZChGsV2USggNiMOruYou6r4lK5IpDB/G/wkjUu0yKGX9rbxenDI
U5PMCCjjmCXPI6T53iHTfIUJrU6adTrCC2qJeHZERxhlbI1Bjjt/msv0tadQ1wUs
N+gDS63pYaACbvXy8MWy7Vu33PqUXHeeE6V/Uq2V8viTO96LXFvKWlJbYK8U90vv
o/ufQJVtMVT8QtPHRh8jrdkPSHCa2XV4cdFyQzR1bldZwgJcJmApzyMZFo6IQ6XU
5MsI+yMRQ+hDKXJioaldXgjUkK642M4UwtBV8ob2xJNDd2ZhwLnoQdeXeGADbkpy
rqXRfboQnoZsG4q5WTP468SQvvG5
-----END CERTIFICATE-----`

// GatewayFromConfig constructs the persistence gateway selected by cfg.Backend.
// Supported backends are "sqlite" (default, local file), "redis", "ddb" (DynamoDB) and "memory".
// When cfg.Compress is set the gateway is wrapped so blobs are stored zstd-compressed.
func GatewayFromConfig(ctx context.Context, cfg *config.Config) (gw ports.Gateway, err error) {
	switch cfg.Backend {
	case BackendSQLite, "":
		gw, err = sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, types.Err(types.ErrGatewayAccess, err, "open sqlite %s", cfg.SQLitePath)
		}

	case BackendRedis:
		var cli *redis.Client
		cli, err = redisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		gw = redisbackend.NewGateway(cli, cfg.KeyPrefix)

	case BackendDDB:
		var cli *dynamodb.Client
		cli, err = ddbClient(ctx, cfg.Region, cfg.DDB)
		if err != nil {
			return nil, err
		}
		gw, err = ddb.NewGateway(ctx, cfg.DDB.Table, cfg.KeyPrefix, cli)
		if err != nil {
			return nil, types.Err(types.ErrGatewayAccess, err, "prepare table %s", cfg.DDB.Table)
		}

	case BackendMemory:
		gw = memory.NewGateway()

	default:
		return nil, types.Err(types.ErrInvalidBackend, nil, "unknown backend %q", cfg.Backend)
	}

	log.WithFields(log.Fields{
		"backend":  cfg.Backend,
		"compress": cfg.Compress,
	}).Debug("persistence gateway ready")

	if cfg.Compress {
		gw = NewCompressedGateway(gw)
	}
	return gw, nil
}

// ddbClient creates a DynamoDB client. A non-empty Endpoint points it at a local mock with static credentials.
func ddbClient(ctx context.Context, region string, c config.DDBConfig) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.Credentials = credentials.NewStaticCredentialsProvider("x", "x", "")
		}
	}), nil
}

func redisClient(ctx context.Context, c config.RedisConfig) (*redis.Client, error) {
	var tlsConfig *tls.Config
	if c.TLS {
		caCerts := x509.NewCertPool()
		if !caCerts.AppendCertsFromPEM([]byte(AmazonRootCA1PEM)) {
			return nil, fmt.Errorf("failed to retrieve CA certificate")
		}
		tlsConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			RootCAs:    caCerts,
		}
	}

	cli := redis.NewClient(&redis.Options{
		Addr:      c.Addr(),
		Username:  c.User,
		Password:  c.Pass,
		DB:        c.DB,
		TLSConfig: tlsConfig,
	})
	if _, err := cli.Ping(ctx).Result(); err != nil {
		return nil, types.Err(types.ErrGatewayAccess, err, "ping redis at %s", c.Addr())
	}
	return cli, nil
}
