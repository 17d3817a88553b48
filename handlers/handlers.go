package handlers

import (
	"net/http"

	"campus-canteen-api/apperror"
	"campus-canteen-api/logging"
	"campus-canteen-api/middleware"
	"campus-canteen-api/services"
	"campus-canteen-api/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Handler holds the components every endpoint needs
type Handler struct {
	Auth    *services.AuthService
	Tokens  *middleware.TokenService
	Orders  *services.OrderLedger
	Revenue *services.RevenueAggregator
	Catalog *services.Catalog
	Log     logrus.FieldLogger
}

// RegisterValidators adds the canteen's custom binding rules to gin's validator
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
		_, ok := statemachine.ParseStatus(fl.Field().String())
		return ok
	})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	e := apperror.From(err)
	if e.Kind == apperror.KindStore {
		logging.FromContext(c, h.Log).WithError(err).Error("request failed")
	}
	c.JSON(e.HTTPStatus(), gin.H{"error": e.Message, "code": e.Kind})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": apperror.KindValidation})
}
