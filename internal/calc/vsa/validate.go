package vsa

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// layerRules carries the accepted ranges of a layer as validator tags.
// Blank values are nil.
type layerRules struct {
	D   *float64 `json:"d" validate:"required,gt=0,lte=10000"`
	Vs  *float64 `json:"vs" validate:"required,gt=0,lte=6000"`
	Rho *float64 `json:"rho" validate:"omitnil,gt=0,lte=5000"`
}

func ptr(v Value) *float64 {
	if x, ok := v.Float(); ok {
		return &x
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

const (
	msgThickness      = "thickness must be a positive number"
	msgThicknessLarge = "thickness is too large (more than 10,000 m)"
	msgVelocity       = "shear-wave velocity must be a positive number"
	msgVelocityLarge  = "shear-wave velocity is too large (more than 6,000 m/s)"
	msgDensity        = "density must be between 0 and 5000 kg/m3"
)

// ValidateLayer returns the problems of a single layer, nil when valid.
func ValidateLayer(l Layer) []string {
	err := validate.Struct(layerRules{D: ptr(l.D), Vs: ptr(l.Vs), Rho: ptr(l.Rho)})
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	var msgs []string
	for _, fe := range fieldErrs {
		msgs = append(msgs, message(fe))
	}
	return msgs
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "d":
		if fe.Tag() == "lte" {
			return msgThicknessLarge
		}
		return msgThickness
	case "vs":
		if fe.Tag() == "lte" {
			return msgVelocityLarge
		}
		return msgVelocity
	case "rho":
		return msgDensity
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

// ValidateProfile collects the problems of every layer, prefixed with the
// 1-based layer number.
func ValidateProfile(layers []Layer) []string {
	var msgs []string
	for i, l := range layers {
		for _, m := range ValidateLayer(l) {
			msgs = append(msgs, fmt.Sprintf("layer %d: %s", i+1, m))
		}
	}
	return msgs
}
