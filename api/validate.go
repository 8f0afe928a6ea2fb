package main

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/DeafMist/comment-radar/internal/models"
)

// queryValidator checks a Query and reports failures as English sentences.
type queryValidator struct {
	v     *validator.Validate
	trans ut.Translator
}

func newQueryValidator() *queryValidator {
	enLoc := en.New()
	uni := ut.New(enLoc, enLoc)
	trans, _ := uni.GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())

	// prefer json tag names in messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if tag == "-" || tag == "" {
			return fld.Name
		}
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		return tag
	})

	_ = en_translations.RegisterDefaultTranslations(v, trans)

	return &queryValidator{v: v, trans: trans}
}

// Check returns nil for a valid query, or one error joining every field message.
func (qv *queryValidator) Check(q models.Query) error {
	err := qv.v.Struct(q)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(qv.trans))
	}
	return errors.New(strings.Join(msgs, "; "))
}
