package handlers

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Entity codes travel in URL paths, so they must stay free of whitespace and
// separator characters. Account code formats are further constrained by the
// ledger rules at the service layer.
var codePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("entitycode", func(fl validator.FieldLevel) bool {
			return codePattern.MatchString(fl.Field().String())
		})
	}
}
