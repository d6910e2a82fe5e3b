package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/facturacion-sunat/pkg/config"
)

// Dimensionado del pool. El servicio es I/O-bound contra SUNAT, no contra la
// base: un pool moderado alcanza y evita agotar conexiones del proveedor.
const (
	poolMaxConns        = 25
	poolMinConns        = 2
	poolConnLifetime    = time.Hour
	poolConnIdleTime    = 30 * time.Minute
	poolHealthCheckFreq = time.Minute
)

// NewPool crea el pool de conexiones. Acepta DATABASE_URL o los campos
// DB_HOST/DB_PORT/... de la configuración. El dial fuerza IPv4 cuando el
// hostname lo permite: en contenedores sin IPv6 un registro AAAA-only deja
// la conexión colgada.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	dsn := buildDSN(cfg)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsear DSN: %w", err)
	}

	poolConfig.ConnConfig.DialFunc = dialIPv4First
	poolConfig.MaxConns = poolMaxConns
	poolConfig.MinConns = poolMinConns
	poolConfig.MaxConnLifetime = poolConnLifetime
	poolConfig.MaxConnIdleTime = poolConnIdleTime
	poolConfig.HealthCheckPeriod = poolHealthCheckFreq

	// Codec NUMERIC <-> shopspring/decimal en cada conexión del pool; los
	// montos de los comprobantes nunca pasan por float64.
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping a la base: %w", err)
	}
	return pool, nil
}

func buildDSN(cfg config.DBConfig) string {
	if cfg.DatabaseURL != "" {
		return urlWithIPv4Host(cfg.DatabaseURL)
	}
	if ipv4, err := resolveIPv4(cfg.Host); err == nil {
		cfg.Host = ipv4
	}
	return cfg.DSN()
}

// dialIPv4First intenta el dial por tcp4; si el hostname no resuelve a IPv4
// cae al dial normal y deja que el resolver decida.
func dialIPv4First(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	ipv4, err := resolveIPv4(host)
	if err != nil {
		return dialer.DialContext(ctx, network, addr)
	}
	return dialer.DialContext(ctx, "tcp4", net.JoinHostPort(ipv4, port))
}

// resolveIPv4 devuelve la primera dirección IPv4 del host, o error si solo
// existe IPv6.
func resolveIPv4(host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() != nil {
			return host, nil
		}
		return "", fmt.Errorf("%s es una dirección IPv6", host)
	}
	ips, err := net.DefaultResolver.LookupIP(context.Background(), "ip4", host)
	if err != nil {
		return "", err
	}
	for _, ip := range ips {
		if ip.To4() != nil {
			return ip.String(), nil
		}
	}
	return "", fmt.Errorf("%s no resuelve a IPv4", host)
}

// urlWithIPv4Host reescribe el hostname de una DATABASE_URL por su IPv4
// cuando existe; si algo falla devuelve la URL intacta.
func urlWithIPv4Host(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return databaseURL
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	ipv4, err := resolveIPv4(u.Hostname())
	if err != nil {
		return databaseURL
	}
	u.Host = net.JoinHostPort(ipv4, port)
	return u.String()
}
