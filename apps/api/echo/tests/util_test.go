package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	echoapi "github.com/edureach/backend/apps/api/echo"
	"github.com/edureach/backend/core/student"
	emailsvc "github.com/edureach/backend/services/email"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}
func (nopLogger) Enable(bool)                  {}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, st student.Student) string {
	t.Helper()
	token, err := echoapi.GenerateToken(echoapi.GetStudentClaims(st, conf), conf)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func createStudent(t *testing.T, name, email, pwd string, role student.Role, verified bool) student.Student {
	t.Helper()
	now := time.Now().UTC()
	st := student.Student{
		Name:          name,
		Email:         email,
		ClassLevel:    "9th",
		Role:          role,
		EmailVerified: verified,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := st.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	st, err := studentRepo.CreateStudent(st)
	if err != nil {
		t.Fatalf("CreateStudent(): %v", err)
	}
	return st
}

var (
	verifyTokenRx = regexp.MustCompile(`token=(\S+)`)
	otpCodeRx     = regexp.MustCompile(`is: (\d{6})`)
)

// lastEmailToken pulls the verification token out of the most recent email.
func lastEmailToken(t *testing.T) string {
	t.Helper()
	msg, ok := emailsvc.LastSentMessage()
	if !ok {
		t.Fatal("no email sent")
	}
	m := verifyTokenRx.FindStringSubmatch(msg.Body)
	if m == nil {
		t.Fatalf("no token in email body:\n%s", msg.Body)
	}
	token, err := url.QueryUnescape(m[1])
	if err != nil {
		t.Fatalf("unescaping token: %v", err)
	}
	return token
}

// lastEmailOTP pulls the 6-digit code out of the most recent email.
func lastEmailOTP(t *testing.T) string {
	t.Helper()
	msg, ok := emailsvc.LastSentMessage()
	if !ok {
		t.Fatal("no email sent")
	}
	m := otpCodeRx.FindStringSubmatch(msg.Body)
	if m == nil {
		t.Fatalf("no OTP in email body:\n%s", msg.Body)
	}
	return m[1]
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}
