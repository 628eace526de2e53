package tests

import (
	"log"
	"os"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/edureach/backend/apps/api/echo"
	"github.com/edureach/backend/core"
	"github.com/edureach/backend/core/auth"
	"github.com/edureach/backend/core/contact"
	"github.com/edureach/backend/core/content"
	"github.com/edureach/backend/core/otp"
	"github.com/edureach/backend/core/student"
	emailsvc "github.com/edureach/backend/services/email"
	dummydb "github.com/edureach/backend/storage/database/dummy"
)

var (
	conf *core.Config
	app  *echoapi.Server

	studentRepo student.Repository
	courseRepo  content.CourseRepository
	assignRepo  content.AssignmentRepository

	studentSvc student.ServiceInterface
	contentSvc content.ServiceInterface

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func TestMain(m *testing.M) {
	conf = &core.Config{
		TestMode:                 true,
		AppName:                  "EduReach",
		SecretKey:                "secret",
		FrontendBaseURL:          "http://localhost:8000",
		DefaultFromEmail:         "no-reply@edureach.local",
		EmailVerificationTimeout: 3 * 24 * time.Hour,
		Server: core.ServerConfig{
			JWTExpirationDelta:  time.Hour,
			PendingLoginTimeout: 15 * time.Minute,
		},
	}

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		log.Fatalf("dummydb.Open(): %v", err)
	}
	studentRepo = dummydb.NewStudentRepository(db)
	courseRepo = dummydb.NewCourseRepository(db)
	assignRepo = dummydb.NewAssignmentRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	studentSvc = student.NewService(studentRepo, mailSvc, conf)
	otpMgr := otp.NewManager(dummydb.NewOTPRepository(db))
	authSvc := auth.NewService(studentSvc, otpMgr, mailSvc, nopLogger{})
	contentSvc = content.NewService(courseRepo, assignRepo, dummydb.NewProgressRepository(db))
	contactSvc := contact.NewService(dummydb.NewContactRepository(db), mailSvc, conf)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	student.RegisterValidators(validate, translator)

	// set up server
	app = echoapi.NewServer(
		"", /* addr */
		echoapi.ServerDeps{
			Conf:           conf,
			Logger:         nopLogger{},
			StudentSvc:     studentSvc,
			AuthSvc:        authSvc,
			ContentSvc:     contentSvc,
			ContactSvc:     contactSvc,
			Validate:       validate,
			Translator:     translator,
			DisableReqLogs: true,
		},
	)

	os.Exit(m.Run())
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
