package attendance

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mahudhurio/core"
)

var (
	gteTag  = "gte"
	gteText = "Values cannot be negative"

	lteFieldTag  = "ltefield"
	lteFieldText = "Attended lectures cannot exceed total lectures"

	notFutureText = "Date cannot be in the future"
)

// InitValidators registers the attendance messages. core.InitValidators must run first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterCustomTranslation(validate, translator, gteTag, gteText, true)
	core.RegisterCustomTranslation(validate, translator, lteFieldTag, lteFieldText, true)
}
