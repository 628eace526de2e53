package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edureach/backend/core/contact"
)

type contactApi struct {
	svc      *contact.Service
	validate *validator.Validate
}

func registerContactAPI(g *echo.Group, svc *contact.Service, validate *validator.Validate) {
	api := contactApi{svc: svc, validate: validate}
	g.POST("/contact", api.submit)
}

func (api *contactApi) submit(ctx echo.Context) error {
	var data contact.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	if _, err := api.svc.Submit(data); err != nil {
		return errors.Wrap(err, "submitting contact message")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Thanks for reaching out. We will get back to you soon."})
}
