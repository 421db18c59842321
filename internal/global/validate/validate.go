// Package validate 在 gin 的 binding 引擎上注册自定义校验规则
package validate

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	MaxKeywords   = 20
	MaxKeywordLen = 50
)

var once sync.Once

func Init() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("keywords", keywords)
	})
}

// keywords 逗号分隔，每项不超过 MaxKeywordLen 个字符，最多 MaxKeywords 项，空串合法
func keywords(fl validator.FieldLevel) bool {
	return Keywords(fl.Field().String())
}

func Keywords(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	n := 0
	for _, k := range strings.Split(s, ",") {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if utf8.RuneCountInString(k) > MaxKeywordLen {
			return false
		}
		n++
	}
	return n <= MaxKeywords
}
