package handler

import (
	"fmt"
	"reflect"
	"regexp"
	"sync"

	"github.com/bank-reconciliation-engine/internal/domain/rule"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by the request DTOs to gin's validator
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
			return
		}
		err = v.RegisterValidation("rule_pattern", validateRulePattern)
	})
	return err
}

// validateRulePattern requires REGEX patterns to compile
func validateRulePattern(fl validator.FieldLevel) bool {
	parent := fl.Parent()
	if parent.Kind() == reflect.Ptr {
		parent = parent.Elem()
	}
	matchType := parent.FieldByName("MatchType")
	if !matchType.IsValid() || matchType.String() != string(rule.MatchTypeRegex) {
		return true
	}
	_, err := regexp.Compile("(?i)" + fl.Field().String())
	return err == nil
}
