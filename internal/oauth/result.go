// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

package oauth

// resultKind tags the outcome of the provider's consent step.
type resultKind int

const (
	resultSuccess resultKind = iota
	resultDeclined
	resultCancelled
)

// Result is the resolved outcome of one authorization attempt, delivered to
// CompleteSignIn after the user finishes or abandons the provider's consent
// page. Exactly one of the three variants applies.
type Result struct {
	kind   resultKind
	code   string
	reason string
}

// Success wraps the authorization code the provider redirected back with.
func Success(code string) Result { return Result{kind: resultSuccess, code: code} }

// Declined wraps a provider error such as access_denied with a bad scope, an
// invalid request, or a state mismatch detected by the redirect listener.
func Declined(reason string) Result { return Result{kind: resultDeclined, reason: reason} }

// Cancelled marks an attempt the user abandoned. It is an expected outcome,
// not a failure.
func Cancelled() Result { return Result{kind: resultCancelled} }
