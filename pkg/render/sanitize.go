package render

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicyOnce sync.Once
	ugcPolicy     *bluemonday.Policy
)

func ugcSanitizer() *bluemonday.Policy {
	ugcPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Globally()
		ugcPolicy = policy
	})
	return ugcPolicy
}

func (cfg *config) sanitize(markup string) string {
	if cfg.sanitizer == nil {
		return markup
	}
	return cfg.sanitizer.Sanitize(markup)
}
