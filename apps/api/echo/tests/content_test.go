package tests

import (
	"net/http"
	"strconv"
	"testing"

	echoapi "github.com/edureach/backend/apps/api/echo"
	"github.com/edureach/backend/core/content"
	"github.com/edureach/backend/core/student"
	emailsvc "github.com/edureach/backend/services/email"
)

func Test_contentApi_courses(t *testing.T) {
	st := createStudent(t, "Luc", "luc@test.cd", "Learn3r!!", student.RoleStudent, true)
	admin := createStudent(t, "Prof", "prof@test.cd", "T3acher!!", student.RoleAdmin, true)
	token, adminToken := getToken(t, st), getToken(t, admin)

	mathCourse := []byte(`{"name":"Algebra","class":"9th","subject":"math","description":"Linear equations",` +
		`"videos":[{"title":"Intro","url":"http://videos/algebra-1"}]}`)

	// only admins manage courses
	req, rec := newAuthRequest(http.MethodPost, "/v1/admin/courses", token, mathCourse)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusForbidden,
		wantData: marchallObj(t, httpErr{Error: "permission denied"}),
	}, rec)

	req, rec = newAuthRequest(http.MethodPost, "/v1/admin/courses", adminToken, mathCourse)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating course: %s", rec.Body.String())
	}
	var math content.Course
	decodeBody(t, rec, &math)
	if math.ID == 0 || len(math.Videos) != 1 {
		t.Fatalf("created course = %+v", math)
	}

	req, rec = newAuthRequest(http.MethodPost, "/v1/admin/courses", adminToken,
		[]byte(`{"name":"Biology","class":"10th","subject":"science"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating course: %s", rec.Body.String())
	}

	// students browse, with optional filters
	listLen := func(t *testing.T, path string) int {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, path, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: %s", path, rec.Body.String())
		}
		var courses []content.Course
		decodeBody(t, rec, &courses)
		return len(courses)
	}
	if n := listLen(t, "/v1/courses"); n < 2 {
		t.Errorf("unfiltered list has %d courses, want >= 2", n)
	}
	if n := listLen(t, "/v1/courses?class=10th&subject=Science"); n != 1 {
		t.Errorf("filtered list has %d courses, want 1", n)
	}
	if n := listLen(t, "/v1/courses?subject=history"); n != 0 {
		t.Errorf("filtered list has %d courses, want 0", n)
	}

	// retrieval by id
	req, rec = newAuthRequest(http.MethodGet, "/v1/courses/999999", token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "course not found"}),
	}, rec)

	req, rec = newAuthRequest(http.MethodGet, "/v1/courses/not-an-id", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("non-numeric id: code = %d, want 404", rec.Code)
	}

	// admin edits keep the videos when the payload has none
	req, rec = newAuthRequest(http.MethodPut, courseURL(math.ID), adminToken,
		[]byte(`{"name":"Algebra I","class":"9th","subject":"math"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("updating course: %s", rec.Body.String())
	}
	var updated content.Course
	decodeBody(t, rec, &updated)
	if updated.Name != "Algebra I" || len(updated.Videos) != 1 {
		t.Errorf("updated course = %+v", updated)
	}

	// and can replace the video list wholesale
	req, rec = newAuthRequest(http.MethodPut, courseURL(math.ID)+"/videos", adminToken,
		[]byte(`{"videos":[{"title":"Intro","url":"http://videos/algebra-1"},{"title":"Equations","url":"http://videos/algebra-2"}]}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("attaching videos: %s", rec.Body.String())
	}
	decodeBody(t, rec, &updated)
	if len(updated.Videos) != 2 {
		t.Errorf("videos = %+v, want 2", updated.Videos)
	}
}

func Test_contentApi_videoProgress(t *testing.T) {
	st := createStudent(t, "Vicky", "vicky@test.cd", "W4tchAll!", student.RoleStudent, true)
	token := getToken(t, st)

	course, err := courseRepo.CreateCourse(content.Course{
		Name:       "Chemistry",
		ClassLevel: "9th",
		Subject:    "science",
		Videos: content.VideoList{
			{Title: "Atoms", URL: "http://videos/chem-1"},
			{Title: "Bonds", URL: "http://videos/chem-2"},
		},
	})
	if err != nil {
		t.Fatalf("CreateCourse(): %v", err)
	}

	complete := func(idx int) []byte {
		return marchallObj(t, echoapi.CompleteVideoRequest{CourseID: course.ID, VideoIndex: &idx})
	}

	// no progress yet
	req, rec := newAuthRequest(http.MethodGet, progressURL(course.ID), token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "no progress recorded"}),
	}, rec)

	// out-of-range index is rejected
	req, rec = newAuthRequest(http.MethodPost, "/v1/progress/video-complete", token, complete(2))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, httpErr{Error: "no such video in this course"}),
	}, rec)

	// first video
	req, rec = newAuthRequest(http.MethodPost, "/v1/progress/video-complete", token, complete(0))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("video-complete: %s", rec.Body.String())
	}
	var p content.Progress
	decodeBody(t, rec, &p)
	if p.Completed || p.Videos.Len() != 1 {
		t.Errorf("progress after one video = %+v", p)
	}

	// index 0 binds; re-watching stays idempotent
	req, rec = newAuthRequest(http.MethodPost, "/v1/progress/video-complete", token, complete(0))
	app.ServeHTTP(rec, req)
	decodeBody(t, rec, &p)
	if p.Videos.Len() != 1 {
		t.Errorf("Videos.Len() = %d, want 1", p.Videos.Len())
	}

	// last video completes the course
	req, rec = newAuthRequest(http.MethodPost, "/v1/progress/video-complete", token, complete(1))
	app.ServeHTTP(rec, req)
	decodeBody(t, rec, &p)
	if !p.Completed || p.CompletedAt == nil {
		t.Errorf("progress after all videos = %+v", p)
	}

	// the per-course view agrees
	req, rec = newAuthRequest(http.MethodGet, progressURL(course.ID), token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("course progress: %s", rec.Body.String())
	}
	decodeBody(t, rec, &p)
	if !p.Completed {
		t.Errorf("course progress = %+v", p)
	}

	// and so does the student's overview
	req, rec = newAuthRequest(http.MethodGet, "/v1/progress", token)
	app.ServeHTTP(rec, req)
	var all []content.Progress
	decodeBody(t, rec, &all)
	if len(all) != 1 {
		t.Errorf("progress overview = %+v, want a single row", all)
	}
}

func Test_contentApi_assignments(t *testing.T) {
	st := createStudent(t, "Quinn", "quinn@test.cd", "Qu1zzer!!", student.RoleStudent, true)
	token := getToken(t, st)

	a, err := assignRepo.CreateAssignment(content.Assignment{
		Title: "States of matter",
		Questions: content.QuestionList{
			{Prompt: "Ice is a ...", Options: map[string]string{"a": "solid", "b": "liquid"}, Answer: "a"},
			{Prompt: "Steam is a ...", Options: map[string]string{"a": "gas", "b": "solid"}, Answer: "a"},
		},
	})
	if err != nil {
		t.Fatalf("CreateAssignment(): %v", err)
	}

	// listings and question sheets never expose the key
	req, rec := newAuthRequest(http.MethodGet, "/v1/assignments", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("listing assignments: %s", rec.Body.String())
	}
	var listed []content.Assignment
	decodeBody(t, rec, &listed)
	for _, la := range listed {
		for i, q := range la.Questions {
			if q.Answer != "" {
				t.Errorf("assignment %d question %d leaks its answer", la.ID, i)
			}
		}
	}

	req, rec = newAuthRequest(http.MethodGet, assignmentURL(a.ID)+"/questions", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("questions: %s", rec.Body.String())
	}
	var sheet content.Assignment
	decodeBody(t, rec, &sheet)
	if len(sheet.Questions) != 2 || sheet.Questions[0].Answer != "" {
		t.Errorf("question sheet = %+v", sheet.Questions)
	}

	// grading
	req, rec = newAuthRequest(http.MethodPost, assignmentURL(a.ID)+"/submit", token,
		marchallObj(t, echoapi.SubmitAssignmentRequest{Answers: []string{"a", "b"}}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: %s", rec.Body.String())
	}
	var res content.Result
	decodeBody(t, rec, &res)
	if res.Score != 50 || res.Correct != 1 || res.Total != 2 {
		t.Errorf("Result = %+v, want score 50 correct 1 total 2", res)
	}

	// resubmission replaces the score
	req, rec = newAuthRequest(http.MethodPost, assignmentURL(a.ID)+"/submit", token,
		marchallObj(t, echoapi.SubmitAssignmentRequest{Answers: []string{"a", "a"}}))
	app.ServeHTTP(rec, req)
	decodeBody(t, rec, &res)
	if res.Score != 100 {
		t.Errorf("Result = %+v, want score 100", res)
	}

	req, rec = newAuthRequest(http.MethodPost, "/v1/assignments/999999/submit", token,
		marchallObj(t, echoapi.SubmitAssignmentRequest{}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "assignment not found"}),
	}, rec)
}

func Test_contactApi_submit(t *testing.T) {
	tests := []httpTest{
		{
			name: "missing fields", body: []byte(`{"name":"Anon"}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "bad email", wantCode: http.StatusBadRequest,
			body:     []byte(`{"name":"Anon","email":"not-an-email","message":"Hi"}`),
			wantData: marchallObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
		{
			name: "submitted", wantCode: http.StatusOK,
			body:     []byte(`{"name":"Parent","email":"parent@test.cd","message":"How do I enroll my kid?"}`),
			wantData: marchallObj(t, map[string]string{"success": "Thanks for reaching out. We will get back to you soon."}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emailsvc.ClearSentMessages()
			req, rec := newRequest(http.MethodPost, "/v1/contact", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				msg, ok := emailsvc.LastSentMessage()
				if !ok {
					t.Fatal("no email forwarded to the operators")
				}
				if msg.Subject != "EduReach contact form: Parent" {
					t.Errorf("Subject = %q", msg.Subject)
				}
			}
		})
	}
}

func courseURL(id int) string     { return "/v1/admin/courses/" + strconv.Itoa(id) }
func progressURL(id int) string   { return "/v1/progress/courses/" + strconv.Itoa(id) }
func assignmentURL(id int) string { return "/v1/assignments/" + strconv.Itoa(id) }
