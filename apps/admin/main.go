package main

import (
	"fmt"
	"log"
	"os"

	"github.com/fitsenior/backend/apps/api/di"
	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/user"
	emailsvc "github.com/fitsenior/backend/services/email"
	logsvc "github.com/fitsenior/backend/services/logger"
	"github.com/fitsenior/backend/storage/database"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	defer logger.Close()

	if conf.Database.IsMemory() {
		logger.Fatal("the admin CLI needs a postgres database; set DATABASE_ENGINE=postgres")
	}

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() { _ = db.Close() }()

	repos := di.PostgresRepositories(db)
	validate, _ := di.NewValidator()

	// start CLI
	cli := commandLine{
		db:       db.DB,
		usrSvc:   user.NewService(repos.Tx, repos.User, repos.Profile, emailsvc.New(conf, logger), conf),
		validate: validate,
		out:      os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("\nerror: %s\n", err), err)
		}
		logger.Close()
		os.Exit(1)
	}
}
