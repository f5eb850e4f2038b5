package routecmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"gfx.cafe/gfx/pgroute/lib/discovery/patroni"
	"gfx.cafe/gfx/pgroute/lib/pgpass"
	"gfx.cafe/gfx/pgroute/lib/router"
)

// Config is constructed once at the entry boundary from flags and
// environment and passed into the router. Nothing below the command layer
// reads ambient state.
type Config struct {
	Intent string

	Hosts        []string
	Port         uint16
	FallbackHost string

	Discover         bool
	APIEndpoints     []string
	DiscoveryTimeout time.Duration

	Database string
	User     string

	Password       string
	PromptPassword bool
	Passfile       string
	SavePassfile   bool

	SSLMode        string
	ConnectTimeout time.Duration
}

func addTopologyFlags(f *pflag.FlagSet, config *Config) {
	f.StringVarP(&config.Intent, "intent", "i", "read-write", "connection intent: read-write, read-only, or best-effort")
	f.StringSliceVarP(&config.Hosts, "host", "H", nil, "endpoint host[:port]; repeat or comma-separate for an ordered failover list")
	f.Uint16VarP(&config.Port, "port", "p", 5432, "default database port for entries without one")
	f.StringVar(&config.FallbackHost, "fallback-host", "", "alternate static host[:port] retried once when a best-effort connect fails")
	f.BoolVar(&config.Discover, "discover", false, "resolve candidates from the cluster-membership API")
	f.StringSliceVar(&config.APIEndpoints, "api", nil, "membership API endpoints (host:port), tried in order")
	f.DurationVar(&config.DiscoveryTimeout, "discovery-timeout", patroni.DefaultQueryTimeout, "timeout per membership query")
}

func addSessionFlags(f *pflag.FlagSet, config *Config) {
	f.StringVarP(&config.Database, "dbname", "d", "", "database name (default: $PGDATABASE, then user name)")
	f.StringVarP(&config.User, "user", "U", "", "database user (default: $PGUSER, then postgres)")
	f.StringVar(&config.Password, "password", "", "password (prefer --password-prompt, $PGPASSWORD, or --passfile)")
	f.BoolVarP(&config.PromptPassword, "password-prompt", "W", false, "prompt for the password")
	f.StringVar(&config.Passfile, "passfile", pgpass.Default(), "password file searched when no other source applies")
	f.StringVar(&config.SSLMode, "sslmode", "", "sslmode carried into the descriptor")
	f.DurationVar(&config.ConnectTimeout, "connect-timeout", 0, "per-attempt connect timeout carried into the descriptor")
}

func (T *Config) intent() (router.Intent, error) {
	return router.ParseIntent(T.Intent)
}

// source picks exactly one topology variant for this invocation.
func (T *Config) source(log *zap.Logger) (router.Source, error) {
	if T.Discover {
		if len(T.APIEndpoints) == 0 {
			return nil, fmt.Errorf("resolve: --discover requires --api endpoints")
		}
		return router.Discovered{
			Discoverer: patroni.NewClient(patroni.Config{
				Endpoints:    T.APIEndpoints,
				QueryTimeout: T.DiscoveryTimeout,
				DatabasePort: T.Port,
			}, log),
		}, nil
	}
	switch len(T.Hosts) {
	case 0:
		return nil, fmt.Errorf("resolve: no topology given (use --host or --discover)")
	case 1:
		candidate, err := router.ParseHostPort(T.Hosts[0], T.Port)
		if err != nil {
			return nil, fmt.Errorf("resolve: %w", err)
		}
		return router.StaticEndpoint{Host: candidate.Host, Port: candidate.Port}, nil
	default:
		return router.HostList{Hosts: T.Hosts, DefaultPort: T.Port}, nil
	}
}

func (T *Config) user() string {
	if T.User != "" {
		return T.User
	}
	if user := os.Getenv("PGUSER"); user != "" {
		return user
	}
	return "postgres"
}

func (T *Config) database() string {
	if T.Database != "" {
		return T.Database
	}
	if database := os.Getenv("PGDATABASE"); database != "" {
		return database
	}
	return T.user()
}

// password resolves the credential source: inline flag, prompt,
// environment, then the password file for the first candidate. The value
// lives only for this invocation.
func (T *Config) password(candidates []router.Candidate) (string, error) {
	if T.Password != "" {
		return T.Password, nil
	}
	if T.PromptPassword {
		fmt.Fprintf(os.Stderr, "Password for user %s: ", T.user())
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	if password := os.Getenv("PGPASSWORD"); password != "" {
		return password, nil
	}
	if T.Passfile != "" && len(candidates) > 0 {
		first := candidates[0]
		if password, ok := pgpass.Password(T.Passfile, first.Host, first.Port, T.database(), T.user()); ok {
			return password, nil
		}
	}
	return "", nil
}
