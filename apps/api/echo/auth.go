package echoapi

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/edureach/backend/core"
	"github.com/edureach/backend/core/auth"
	"github.com/edureach/backend/core/student"
)

const (
	contextTokenKey   = "studentToken"
	contextStudentKey = "student"

	// pendingPurpose labels the short-lived token carried between the password
	// check and OTP verification so it can never pass as an auth token.
	pendingPurpose = "login-otp"
)

// newJWTConfig is the auth middleware config guarding the authed endpoints.
func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	ClassLevel string `json:"class,omitempty"`
	Role       string `json:"role,omitempty"`
	IsAdmin    bool   `json:"is_admin,omitempty"` // -> ADMIN DASHBOARD
	Purpose    string `json:"purpose,omitempty"`  // set on pending-login tokens only
}

// PendingClaims is the transient login session between password and OTP steps.
type PendingClaims struct {
	jwt.StandardClaims
	PendingID int    `json:"pid"`
	SentAt    int64  `json:"sent_at"`
	Purpose   string `json:"purpose"`
}

func GetStudentClaims(st student.Student, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(st.ID),
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:       st.Name,
		Email:      st.Email,
		ClassLevel: st.ClassLevel,
		Role:       string(st.Role),
		IsAdmin:    st.IsAdmin(),
	}
}

func getPendingClaims(sess auth.Session, conf *core.Config) *PendingClaims {
	now := time.Now()
	return &PendingClaims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(sess.PendingStudentID),
			ExpiresAt: now.Add(conf.Server.PendingLoginTimeout).Unix(),
			IssuedAt:  now.Unix(),
		},
		PendingID: sess.PendingStudentID,
		SentAt:    sess.OTPSentAt.Unix(),
		Purpose:   pendingPurpose,
	}
}

// GenerateToken generates a signed JWT token string representing the claims.
func GenerateToken(claims jwt.Claims, conf *core.Config) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// GeneratePendingToken materializes a login session as a signed token the
// client holds between the password and OTP steps.
func GeneratePendingToken(sess auth.Session, conf *core.Config) (string, error) {
	return GenerateToken(getPendingClaims(sess, conf), conf)
}

// parsePendingToken recovers the login session from its token. Any structural,
// signature, purpose or expiry failure reports the same "no pending login".
func parsePendingToken(tokenStr string, conf *core.Config) (auth.Session, error) {
	var claims PendingClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != middleware.AlgorithmHS256 {
			return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(conf.SecretKey), nil
	})
	if err != nil || !token.Valid || claims.Purpose != pendingPurpose {
		return auth.Session{}, auth.ErrNoPendingLogin
	}
	return auth.Session{
		PendingStudentID: claims.PendingID,
		OTPSentAt:        time.Unix(claims.SentAt, 0).UTC(),
	}, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextStudent(ctx echo.Context, svc student.ServiceInterface) (student.Student, error) {
	if st, ok := ctx.Get(contextStudentKey).(student.Student); ok {
		return st, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "getting context claims")
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return student.Student{}, errUnauthorized
	}

	st, err := svc.GetByID(id)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "finding student by ID")
	}
	ctx.Set(contextStudentKey, st)
	return st, nil
}
