package api

import (
	"reflect"
	"sync"
	"sync/atomic"

	"CoinCast/internal/domain/models"
	xhttp "CoinCast/pkg/http"

	"github.com/go-playground/validator/v10"
)

var (
	registerOnce sync.Once
	registerErr  error
	maxHorizon   atomic.Int64
)

// registerValidators installs the crypto, model_id and max_horizon tags.
// The horizon limit is read at validation time so it follows configuration.
func registerValidators(limit int) error {
	maxHorizon.Store(int64(limit))
	registerOnce.Do(func() {
		for _, v := range []struct {
			tag string
			fn  validator.Func
			msg string
		}{
			{"crypto", func(fl validator.FieldLevel) bool { return models.IsKnownCrypto(fl.Field().String()) }, "%s must be one of the supported cryptocurrencies"},
			{"model_id", func(fl validator.FieldLevel) bool { return models.IsKnownModel(fl.Field().String()) }, "%s must be one of the supported models"},
			{"max_horizon", withinMaxHorizon, "%s exceeds the maximum forecast horizon"},
		} {
			if err := xhttp.RegisterValidation(v.tag, v.fn, v.msg); err != nil {
				registerErr = err
				return
			}
		}
	})
	return registerErr
}

func withinMaxHorizon(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() == reflect.Ptr {
		if f.IsNil() {
			return true
		}
		f = f.Elem()
	}
	switch f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		limit := maxHorizon.Load()
		return limit <= 0 || f.Int() <= limit
	}
	return false
}
