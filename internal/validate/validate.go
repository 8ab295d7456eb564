// Package validate checks request structs and reports translated messages.
package validate

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	fatranslations "github.com/go-playground/validator/v10/translations/fa"

	"github.com/damacus/ironshelf/internal/errs"
	"github.com/damacus/ironshelf/internal/i18n"
)

// MaxKeyLength is the S3 limit on object key length in bytes.
const MaxKeyLength = 1024

var bucketNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

// Validator implements echo.Validator.
type Validator struct {
	validate *validator.Validate
	catalog  *i18n.Catalog
}

// New registers translations on catalog; call it once per catalog.
func New(catalog *i18n.Catalog) (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names so messages match the form fields.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	for tag, fn := range map[string]validator.Func{
		"bucketname": bucketName,
		"foldername": folderName,
		"objectkey":  objectKey,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", tag, err)
		}
	}

	enTrans := catalog.Translator(i18n.English)
	if err := entranslations.RegisterDefaultTranslations(v, enTrans); err != nil {
		return nil, fmt.Errorf("failed to register translations: %w", err)
	}
	faTrans := catalog.Translator(i18n.Persian)
	if err := fatranslations.RegisterDefaultTranslations(v, faTrans); err != nil {
		return nil, fmt.Errorf("failed to register translations: %w", err)
	}

	for lang, msgs := range customMessages {
		trans := catalog.Translator(lang)
		for tag, text := range msgs {
			if err := registerMessage(v, trans, tag, text); err != nil {
				return nil, err
			}
		}
	}

	return &Validator{validate: v, catalog: catalog}, nil
}

// Validate checks i and reports English messages.
func (cv *Validator) Validate(i any) error {
	return cv.ValidateIn(i18n.English, i)
}

// ValidateIn checks i and reports messages in lang. Failures are
// KindInvalidInput errors.
func (cv *Validator) ValidateIn(lang string, i any) error {
	err := cv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return errs.Wrap(errs.KindInvalidInput, "invalid request", err)
	}

	trans := cv.catalog.Translator(lang)
	msgs := make([]string, 0, len(valErrs))
	for _, fe := range valErrs {
		msgs = append(msgs, fe.Translate(trans))
	}
	return errs.New(errs.KindInvalidInput, strings.Join(msgs, "; "))
}

// Var checks a single value against tag.
func (cv *Validator) Var(value any, tag string) error {
	if err := cv.validate.Var(value, tag); err != nil {
		return errs.Wrap(errs.KindInvalidInput, "invalid value", err)
	}
	return nil
}

func registerMessage(v *validator.Validate, trans ut.Translator, tag, text string) error {
	return v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, err := ut.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return t
		},
	)
}

var customMessages = map[string]map[string]string{
	i18n.English: {
		"bucketname": "{0} must be 3-63 lowercase letters, digits, dots or hyphens and start and end with a letter or digit",
		"foldername": "{0} must not be empty, contain '/' or be '.' or '..'",
		"objectkey":  "{0} must be a non-empty key of at most 1024 bytes",
	},
	i18n.Persian: {
		"bucketname": "{0} باید ۳ تا ۶۳ حرف کوچک، عدد، نقطه یا خط تیره باشد و با حرف یا عدد شروع و تمام شود",
		"foldername": "{0} نباید خالی باشد، '/' داشته باشد یا '.' و '..' باشد",
		"objectkey":  "{0} باید کلیدی غیرخالی با حداکثر ۱۰۲۴ بایت باشد",
	},
}

// ValidBucketName applies the S3 bucket naming rules.
func ValidBucketName(name string) bool {
	if !bucketNameRe.MatchString(name) {
		return false
	}
	if strings.Contains(name, "..") || strings.Contains(name, ".-") || strings.Contains(name, "-.") {
		return false
	}
	if net.ParseIP(name) != nil {
		return false
	}
	if strings.HasPrefix(name, "xn--") || strings.HasPrefix(name, "sthree-") ||
		strings.HasSuffix(name, "-s3alias") || strings.HasSuffix(name, "--ol-s3") {
		return false
	}
	return true
}

// ValidFolderName reports whether name can be one path segment.
func ValidFolderName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.Contains(name, "/") && len(name) < MaxKeyLength
}

func bucketName(fl validator.FieldLevel) bool {
	return ValidBucketName(fl.Field().String())
}

func folderName(fl validator.FieldLevel) bool {
	return ValidFolderName(fl.Field().String())
}

func objectKey(fl validator.FieldLevel) bool {
	k := fl.Field().String()
	return k != "" && len(k) <= MaxKeyLength
}
