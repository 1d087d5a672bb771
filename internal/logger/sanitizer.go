package logger

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Sanitizer masks secrets before they reach a log line: bearer tokens,
// signed-URL query signatures and credential-looking key/value args.
//
// Limitation: SanitizeArgs masks values only when the key looks
// sensitive. A token embedded in the value of a harmless key is caught
// only if it matches one of the string patterns.
type Sanitizer struct {
	mu       sync.RWMutex
	patterns []SanitizeRule
}

// SanitizeRule is a single masking rule.
type SanitizeRule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// NewSanitizer creates a sanitizer with the default rules.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{patterns: defaultSanitizeRules()}
}

func defaultSanitizeRules() []SanitizeRule {
	return []SanitizeRule{
		// Auth headers and token query params
		{regexp.MustCompile(`(?i)bearer\s+\S+`), "bearer ***"},
		{regexp.MustCompile(`(?i)token=\S+`), "token=***"},
		{regexp.MustCompile(`(?i)api[_-]?key=\S+`), "api_key=***"},
		{regexp.MustCompile(`(?i)password=\S+`), "password=***"},

		// Signed-URL secrets (S3-style presigned query params)
		{regexp.MustCompile(`(?i)x-amz-signature=[^&\s"]+`), "X-Amz-Signature=***"},
		{regexp.MustCompile(`(?i)x-amz-credential=[^&\s"]+`), "X-Amz-Credential=***"},
		{regexp.MustCompile(`(?i)x-amz-security-token=[^&\s"]+`), "X-Amz-Security-Token=***"},
		{regexp.MustCompile(`(?i)signature=[^&\s"]+`), "signature=***"},

		// Home directories in local source paths
		{regexp.MustCompile(`/home/[^/\s]+`), "/home/***"},
		{regexp.MustCompile(`/Users/[^/\s]+`), "/Users/***"},
		{regexp.MustCompile(`(?i)[A-Z]:\\Users\\[^\\\s]+`), `***:\Users\***`},
	}
}

// Sanitize applies every rule to a string.
func (s *Sanitizer) Sanitize(input string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := input
	for _, rule := range s.patterns {
		result = rule.Pattern.ReplaceAllString(result, rule.Replacement)
	}
	return result
}

// SanitizeArgs masks the values of sensitive keys in slog-style
// key/value argument lists.
func (s *Sanitizer) SanitizeArgs(args []any) []any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(args) == 0 {
		return args
	}

	result := make([]any, len(args))
	copy(result, args)

	for i := 0; i < len(result)-1; i += 2 {
		key, ok := result[i].(string)
		if !ok {
			continue
		}
		if !isSensitiveKey(key) {
			// Still run the string rules over string values so
			// signed URLs logged under neutral keys get masked.
			if v, ok := result[i+1].(string); ok {
				masked := v
				for _, rule := range s.patterns {
					masked = rule.Pattern.ReplaceAllString(masked, rule.Replacement)
				}
				result[i+1] = masked
			}
			continue
		}
		switch v := result[i+1].(type) {
		case string:
			result[i+1] = maskValue(v)
		case error:
			result[i+1] = maskValue(v.Error())
		}
	}

	return result
}

func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	sensitiveKeys := []string{
		"password", "token", "secret",
		"api_key", "apikey", "credential", "auth",
	}
	for _, sk := range sensitiveKeys {
		if strings.Contains(lowerKey, sk) {
			return true
		}
	}
	return false
}

// maskValue keeps at most the first and last character.
func maskValue(value string) string {
	if len(value) <= 2 {
		return "***"
	}
	if len(value) <= 8 {
		return fmt.Sprintf("%s***", string(value[0]))
	}
	return fmt.Sprintf("%s***%s", string(value[0]), string(value[len(value)-1]))
}

// AddRule registers an extra masking rule.
func (s *Sanitizer) AddRule(pattern string, replacement string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}
	s.patterns = append(s.patterns, SanitizeRule{Pattern: re, Replacement: replacement})
	return nil
}
