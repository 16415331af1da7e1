// Command superlink-migrate applies (or rolls back) the Postgres
// schema migrations SuperLink depends on, using
// github.com/thrasher-corp/goose against the SQL files in
// internal/store/migrations -- the same goose.Run invocation style
// gocryptotrader's database/testhelpers uses.
package main

import (
	"database/sql"
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"
	_ "github.com/jackc/pgx/v4/stdlib"
	log "github.com/sirupsen/logrus"
	"github.com/thrasher-corp/goose"
	mbp "go.gazette.dev/core/mainboilerplate"
)

// migrationsDir is the on-disk location of the goose migration
// scripts relative to the repository root. The older goose fork this
// module depends on (pinned for parity with the gocryptotrader
// example) takes a directory path rather than an embed.FS, so
// internal/store.Migrations, which embeds the same files, is not
// used here.
const migrationsDir = "internal/store/migrations"

type args struct {
	DatabaseURI string                `long:"database-uri" env:"FLWR_DATABASE_URI" required:"true" description:"Postgres connection string"`
	Direction   string                `long:"direction" default:"up" choice:"up" choice:"down" description:"Migration direction"`
	Log         mbp.LogConfig         `group:"Logging" namespace:"log" env-namespace:"LOG"`
	Diagnostics mbp.DiagnosticsConfig `group:"Debug" namespace:"debug" env-namespace:"DEBUG"`
}

func main() {
	var opts args
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	defer mbp.InitDiagnosticsAndRecover(opts.Diagnostics)()
	mbp.InitLog(opts.Log)

	db, err := sql.Open("pgx", opts.DatabaseURI)
	mbp.Must(err, "opening database connection")
	defer db.Close()

	mbp.Must(db.Ping(), "connecting to database")

	log.WithFields(log.Fields{"direction": opts.Direction, "dir": migrationsDir}).Info("applying migrations")
	mbp.Must(goose.Run(opts.Direction, db, "postgres", migrationsDir, ""), "running migrations")

	log.Info("goodbye")
}
