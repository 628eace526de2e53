package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edureach/backend/core"
	"github.com/edureach/backend/core/auth"
	"github.com/edureach/backend/core/student"
)

type authApi struct {
	conf       *core.Config
	studentSvc student.ServiceInterface
	authSvc    *auth.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerAuthAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	conf *core.Config,
	studentSvc student.ServiceInterface,
	authSvc *auth.Service,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := authApi{
		conf:       conf,
		studentSvc: studentSvc,
		authSvc:    authSvc,
		validate:   validate,
		translator: translator,
	}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/register", api.register)
	ag.GET("/verify-email", api.verifyEmail)
	ag.POST("/resend-verification", api.resendVerification)
	ag.POST("/login", api.login)
	ag.POST("/verify-otp", api.verifyOTP)
	ag.POST("/resend-otp", api.resendOTP)

	// authed endpoints
	ag.POST("/logout", api.logout, jwt)

	// admin endpoints
	g.GET("/admin/students", api.queryStudents, jwt, adminMiddleware())
}

// Handlers

func (api *authApi) register(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate, api.studentSvc); err != nil {
		return err
	}

	st, err := api.studentSvc.Register(data)
	if err != nil {
		return errors.Wrap(err, "registering student")
	}
	return ctx.JSON(http.StatusCreated, st)
}

func (api *authApi) verifyEmail(ctx echo.Context) error {
	token := ctx.QueryParam("token")
	if _, err := api.studentSvc.VerifyEmail(token); err != nil {
		if errors.Cause(err) == student.ErrAlreadyVerified {
			return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Email already verified. You can login."})
		}
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Email verified successfully. You can now login."})
}

func (api *authApi) resendVerification(ctx echo.Context) error {
	var data student.ResendVerification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResendVerification")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.studentSvc.RequestVerification(data.Email); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Verification email sent. Please check your inbox."})
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, err := api.authSvc.Login(data.Email, data.Password, student.Role(data.Role))
	if err != nil {
		return err
	}

	otpToken, err := GeneratePendingToken(sess, api.conf)
	if err != nil {
		return errors.Wrap(err, "generating pending token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{OTPRequired: true, OTPToken: otpToken})
}

func (api *authApi) verifyOTP(ctx echo.Context) error {
	var data VerifyOTPRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VerifyOTPRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	sess, err := parsePendingToken(data.OTPToken, api.conf)
	if err != nil {
		return err
	}

	st, err := api.authSvc.VerifyOTP(sess, data.OTP)
	if err != nil {
		return err
	}

	token, err := GenerateToken(GetStudentClaims(st, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	redirect := "/dashboard"
	if st.IsAdmin() {
		redirect = "/admin/dashboard"
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token, Redirect: redirect})
}

func (api *authApi) resendOTP(ctx echo.Context) error {
	var data ResendOTPRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResendOTPRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	sess, err := parsePendingToken(data.OTPToken, api.conf)
	if err != nil {
		return err
	}

	sess, err = api.authSvc.ResendOTP(sess)
	if err != nil {
		return err
	}

	otpToken, err := GeneratePendingToken(sess, api.conf)
	if err != nil {
		return errors.Wrap(err, "generating pending token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{OTPRequired: true, OTPToken: otpToken})
}

// logout exists for symmetry: tokens are stateless, the client simply drops
// its copy. The endpoint gives the frontend a uniform success envelope.
func (api *authApi) logout(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Logged out."})
}

func (api *authApi) queryStudents(ctx echo.Context) error {
	students, err := api.studentSvc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
		Role     string `json:"role" validate:"omitempty,oneof=student admin"`
	}

	LoginResponse struct {
		OTPRequired bool   `json:"otp_required"`
		OTPToken    string `json:"otp_token"`
	}

	VerifyOTPRequest struct {
		OTPToken string `json:"otp_token" validate:"required"`
		OTP      string `json:"otp" validate:"required"`
	}

	ResendOTPRequest struct {
		OTPToken string `json:"otp_token" validate:"required"`
	}

	TokenResponse struct {
		Token    string `json:"token"`
		Redirect string `json:"redirect"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	lr.Role = core.CleanString(lr.Role, true /* lower */)
	if lr.Role == "" {
		lr.Role = string(student.RoleStudent)
	}
	return validate.Struct(lr)
}
