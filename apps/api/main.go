package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	echoapi "github.com/edureach/backend/apps/api/echo"
	"github.com/edureach/backend/core"
	"github.com/edureach/backend/core/auth"
	"github.com/edureach/backend/core/contact"
	"github.com/edureach/backend/core/content"
	"github.com/edureach/backend/core/otp"
	"github.com/edureach/backend/core/student"
	emailsvc "github.com/edureach/backend/services/email"
	logsvc "github.com/edureach/backend/services/logger"
	"github.com/edureach/backend/storage/database"
	pgrepos "github.com/edureach/backend/storage/database/postgres"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("failed to close DB", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}

	studentSvc := student.NewService(pgrepos.NewStudentRepository(db), mailSvc, conf)
	otpMgr := otp.NewManager(pgrepos.NewOTPRepository(db))
	authSvc := auth.NewService(studentSvc, otpMgr, mailSvc, logger)
	contentSvc := content.NewService(
		pgrepos.NewCourseRepository(db),
		pgrepos.NewAssignmentRepository(db),
		pgrepos.NewProgressRepository(db),
	)
	contactSvc := contact.NewService(pgrepos.NewContactRepository(db), mailSvc, conf)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	student.RegisterValidators(validate, translator)

	if err = seedAdmin(conf, studentSvc); err != nil {
		logger.Fatal(fmt.Sprintf("seeding admin account: %v", err), err)
	}

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		conf.Server.Address(),
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			StudentSvc: studentSvc,
			AuthSvc:    authSvc,
			ContentSvc: contentSvc,
			ContactSvc: contactSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}

// seedAdmin ensures the configured admin account exists, is verified and holds
// the admin role. It is a no-op when the seed credentials are unset.
func seedAdmin(conf *core.Config, svc student.ServiceInterface) error {
	if conf.AdminEmail == "" || conf.AdminPassword == "" {
		return nil
	}

	st, err := svc.GetByEmail(conf.AdminEmail)
	if err != nil {
		if errors.Cause(err) != student.ErrNotFound {
			return err
		}
		st, err = svc.Register(student.NewStudent{
			Name:            "Admin",
			Email:           conf.AdminEmail,
			ClassLevel:      "10th",
			Password:        conf.AdminPassword,
			PasswordConfirm: conf.AdminPassword,
		})
		if err != nil {
			return err
		}
	}

	if st, err = svc.MarkVerified(st); err != nil {
		return err
	}
	_, err = svc.PromoteAdmin(st)
	return err
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
