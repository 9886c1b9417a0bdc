package webhook

import (
	"crypto/subtle"

	"github.com/google/go-github/v68/github"
)

// VerifyGitHubSignature checks X-Hub-Signature-256 against the raw body. An
// empty secret disables verification.
func VerifyGitHubSignature(body []byte, signature, secret string) bool {
	if secret == "" {
		return true
	}
	if signature == "" {
		return false
	}
	return github.ValidateSignature(signature, body, []byte(secret)) == nil
}

// VerifyGitLabToken compares X-Gitlab-Token with the configured token in
// constant time. An empty configured token disables verification.
func VerifyGitLabToken(token, secret string) bool {
	if secret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}
