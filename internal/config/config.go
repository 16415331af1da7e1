// Package config loads SuperLink's configuration in three layers of
// increasing precedence (spec.md §6 / SPEC_FULL.md §2): an optional
// YAML file, environment variables prefixed FLWR_ with __ as the
// nested-key separator, then CLI flags. Flags always win.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	flags "github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the environment variable prefix recognised by Load.
const EnvPrefix = "FLWR_"

// envNestedSeparator joins struct path segments when deriving an
// environment variable name from a nested config field, e.g.
// Driver.MessageExpiresAfter becomes FLWR_DRIVER__MESSAGE_EXPIRES_AFTER.
const envNestedSeparator = "__"

// ServiceLimits are the per-service encode/decode size and expiry
// settings spec.md §6 names for both the fleet and driver surfaces.
type ServiceLimits struct {
	MaxEncodingMessageSize int           `yaml:"max_encoding_message_size" long:"max-encoding-message-size" default-mask:"4194304"`
	MaxDecodingMessageSize int           `yaml:"max_decoding_message_size" long:"max-decoding-message-size" default-mask:"4194304"`
	MessageExpiresAfter    time.Duration `yaml:"message_expires_after" long:"message-expires-after" default-mask:"10s"`
}

// Config is SuperLink's full runtime configuration.
//
// Defaults come from Default(), not from go-flags `default` tags: go-flags
// writes a tag default into every flag absent from the command line,
// which would overwrite values set from YAML or the environment. The
// `default-mask` tags only show those defaults in --help.
type Config struct {
	BindTo                string        `yaml:"bind_to" long:"bind-to" default-mask:"0.0.0.0:50051" description:"Address the gRPC server binds to"`
	Timeout               time.Duration `yaml:"timeout" long:"timeout" default-mask:"5s" description:"Per-request deadline; cmd/superlink does not apply it to the gRPC server"`
	MaxFrameSize           int           `yaml:"max_frame_size" long:"max-frame-size" default-mask:"16777215" description:"HTTP/2 max frame size"`
	HTTP2KeepaliveInterval time.Duration `yaml:"http2_keepalive_interval" long:"http2-keepalive-interval" default-mask:"60s"`
	HTTP2KeepaliveTimeout  time.Duration `yaml:"http2_keepalive_timeout" long:"http2-keepalive-timeout" default-mask:"20s"`
	TCPKeepalive           time.Duration `yaml:"tcp_keepalive" long:"tcp-keepalive" default-mask:"60s"`
	Certificate            string        `yaml:"certificate" long:"certificate" description:"TLS certificate path; cmd/superlink does not enable TLS from it"`
	PrivateKey             string        `yaml:"private_key" long:"private-key" description:"TLS private key path"`
	// DatabaseURI intentionally carries no go-flags `required` tag:
	// go-flags treats "required" as "present among args", which would
	// reject a value supplied only via YAML or FLWR_DATABASE_URI.
	// Load checks for a non-empty value itself, after all three layers
	// have had a chance to set it.
	DatabaseURI string `yaml:"database_uri" long:"database-uri" description:"Postgres connection string"`

	Fleet  ServiceLimits `yaml:"fleet" group:"Fleet service" namespace:"fleet" env-namespace:"FLEET"`
	Driver ServiceLimits `yaml:"driver" group:"Driver service" namespace:"driver" env-namespace:"DRIVER"`
}

// Default returns the Config that Load starts from before applying
// the YAML, environment and flag layers. Its values match the
// `default-mask` tags shown in --help.
func Default() Config {
	return Config{
		BindTo:                 "0.0.0.0:50051",
		Timeout:                5 * time.Second,
		MaxFrameSize:           16777215,
		HTTP2KeepaliveInterval: 60 * time.Second,
		HTTP2KeepaliveTimeout:  20 * time.Second,
		TCPKeepalive:           60 * time.Second,
		Fleet: ServiceLimits{
			MaxEncodingMessageSize: 4 << 20,
			MaxDecodingMessageSize: 4 << 20,
			MessageExpiresAfter:    10 * time.Second,
		},
		Driver: ServiceLimits{
			MaxEncodingMessageSize: 4 << 20,
			MaxDecodingMessageSize: 4 << 20,
			MessageExpiresAfter:    10 * time.Second,
		},
	}
}

// Load builds a Config from, in increasing precedence: yamlPath (if
// non-empty), FLWR_-prefixed environment variables, then args (as
// would be passed on the command line, e.g. os.Args[1:]).
func Load(yamlPath string, args []string) (Config, error) {
	cfg := Default()

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", yamlPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", yamlPath, err)
		}
	}

	if err := applyEnv(&cfg, EnvPrefix, nil); err != nil {
		return Config{}, fmt.Errorf("applying %s* environment overrides: %w", EnvPrefix, err)
	}

	parser := flags.NewParser(&cfg, flags.Default)
	// spec.md §6 names nested flags hyphen-joined
	// (--fleet-max-encoding-message-size), not go-flags' default
	// dot-namespaced form.
	parser.NamespaceDelimiter = "-"
	if _, err := parser.ParseArgs(args); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseURI == "" {
		return Config{}, fmt.Errorf("database-uri must be set via config file, %sDATABASE_URI, or --database-uri", EnvPrefix)
	}

	return cfg, nil
}

// applyEnv walks cfg's exported fields, overriding each scalar field
// from the environment variable its path derives
// (prefix + upper-snake field path joined by __), when that variable
// is set. Nested structs recurse with the field name appended to the
// path.
func applyEnv(cfg interface{}, prefix string, path []string) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)
		fieldPath := append(append([]string{}, path...), envFieldName(field))

		if fv.Kind() == reflect.Struct && fv.Type() != reflect.TypeOf(time.Duration(0)) {
			if err := applyEnv(fv.Addr().Interface(), prefix, fieldPath); err != nil {
				return err
			}
			continue
		}

		envVar := prefix + strings.Join(fieldPath, envNestedSeparator)
		raw, ok := os.LookupEnv(envVar)
		if !ok {
			continue
		}
		if err := setScalar(fv, raw); err != nil {
			return fmt.Errorf("%s: %w", envVar, err)
		}
	}
	return nil
}

func envFieldName(field reflect.StructField) string {
	return strings.ToUpper(toSnakeCase(field.Name))
}

// toSnakeCase inserts an underscore at each word boundary, treating a
// run of capitals (an acronym like URI, TTL, HTTP2) as a single word
// rather than splitting every letter: DatabaseURI -> Database_URI,
// HTTP2KeepaliveInterval -> HTTP2_Keepalive_Interval.
func toSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	isUpper := func(r rune) bool { return r >= 'A' && r <= 'Z' }
	isLower := func(r rune) bool { return r >= 'a' && r <= 'z' }
	isDigit := func(r rune) bool { return r >= '0' && r <= '9' }

	for i, r := range runes {
		if i > 0 && isUpper(r) {
			prev := runes[i-1]
			nextIsLower := i+1 < len(runes) && isLower(runes[i+1])
			if isLower(prev) || isDigit(prev) || (nextIsLower && isUpper(prev)) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

func setScalar(fv reflect.Value, raw string) error {
	switch {
	case fv.Type() == reflect.TypeOf(time.Duration(0)):
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		fv.SetInt(int64(d))
		return nil
	case fv.Kind() == reflect.String:
		fv.SetString(raw)
		return nil
	case fv.Kind() == reflect.Int || fv.Kind() == reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		fv.SetInt(n)
		return nil
	case fv.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		fv.SetBool(b)
		return nil
	default:
		return fmt.Errorf("unsupported field kind %s for environment override", fv.Kind())
	}
}
