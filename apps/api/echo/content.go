package echoapi

import (
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edureach/backend/core"
	"github.com/edureach/backend/core/content"
)

type contentApi struct {
	svc        content.ServiceInterface
	validate   *validator.Validate
	translator ut.Translator
}

func registerContentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc content.ServiceInterface,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := contentApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	// authed endpoints
	cg := g.Group("", jwt)
	cg.GET("/courses", api.queryCourses)
	cg.GET("/courses/:id", api.retrieveCourse)
	cg.GET("/assignments", api.queryAssignments)
	cg.GET("/assignments/:id/questions", api.retrieveQuestions)
	cg.POST("/assignments/:id/submit", api.submitAssignment)
	cg.GET("/progress", api.queryProgress)
	cg.GET("/progress/courses/:id", api.retrieveCourseProgress)
	cg.POST("/progress/video-complete", api.completeVideo)

	// admin endpoints
	adg := g.Group("/admin", jwt, adminMiddleware())
	adg.POST("/courses", api.createCourse)
	adg.PUT("/courses/:id", api.updateCourse)
	adg.PUT("/courses/:id/videos", api.attachVideos)
}

// Handlers

func (api *contentApi) queryCourses(ctx echo.Context) error {
	filter := content.CourseFilter{
		ClassLevel: core.CleanString(ctx.QueryParam("class"), true /* lower */),
		Subject:    core.CleanString(ctx.QueryParam("subject"), true /* lower */),
	}
	courses, err := api.svc.QueryCourses(filter)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *contentApi) retrieveCourse(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	course, err := api.svc.GetCourse(id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, course)
}

func (api *contentApi) queryAssignments(ctx echo.Context) error {
	assignments, err := api.svc.QueryAssignments()
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	// answers never leave the server
	for i := range assignments {
		for j, q := range assignments[i].Questions {
			assignments[i].Questions[j] = q.Public()
		}
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *contentApi) retrieveQuestions(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	a, err := api.svc.GetAssignmentQuestions(id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *contentApi) submitAssignment(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data SubmitAssignmentRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitAssignmentRequest")
	}

	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}

	res, err := api.svc.SubmitAssignment(studentID, id, data.Answers)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *contentApi) queryProgress(ctx echo.Context) error {
	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}
	progresses, err := api.svc.StudentProgress(studentID)
	if err != nil {
		return errors.Wrap(err, "querying progress")
	}
	return ctx.JSON(http.StatusOK, progresses)
}

func (api *contentApi) retrieveCourseProgress(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}
	p, err := api.svc.CourseProgress(studentID, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *contentApi) completeVideo(ctx echo.Context) error {
	var data CompleteVideoRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CompleteVideoRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	studentID, err := contextStudentID(ctx)
	if err != nil {
		return err
	}

	p, err := api.svc.CompleteVideo(studentID, data.CourseID, *data.VideoIndex)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *contentApi) createCourse(ctx echo.Context) error {
	var data content.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	course, err := api.svc.UpsertCourse(0, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, course)
}

func (api *contentApi) updateCourse(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data content.NewCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err = api.validate.Struct(&data); err != nil {
		return err
	}

	course, err := api.svc.UpsertCourse(id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, course)
}

func (api *contentApi) attachVideos(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data AttachVideosRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AttachVideosRequest")
	}
	if err = api.validate.Struct(&data); err != nil {
		return err
	}

	course, err := api.svc.AttachVideos(id, data.Videos)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, course)
}

type (
	SubmitAssignmentRequest struct {
		Answers []string `json:"answers"`
	}

	CompleteVideoRequest struct {
		CourseID   int  `json:"course_id" validate:"required"`
		VideoIndex *int `json:"video_index" validate:"required"` // pointer so index 0 binds
	}

	AttachVideosRequest struct {
		Videos []content.Video `json:"videos" validate:"required,dive"`
	}
)

func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}

func contextStudentID(ctx echo.Context) (int, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, errUnauthorized
	}
	return id, nil
}
