package errors

// Kind is a machine-readable error classification.
type Kind string

// Build-time kinds: the request never reached the network.
const (
	// KindTemplateSyntax indicates a malformed format string.
	KindTemplateSyntax Kind = "TEMPLATE_SYNTAX"
	// KindResourceNotFound indicates a placeholder named an unregistered resource.
	KindResourceNotFound Kind = "RESOURCE_NOT_FOUND"
	// KindResourceFailed indicates a resource could not produce its value.
	KindResourceFailed Kind = "RESOURCE_FAILED"
	// KindCapabilityFailed indicates a capability in the chain failed.
	KindCapabilityFailed Kind = "CAPABILITY_FAILED"
	// KindBuildFailed indicates the accumulated request state or URL was invalid.
	KindBuildFailed Kind = "BUILD_FAILED"
)

// Execution kinds.
const (
	// KindCloneFailed indicates a request could not be cloned for an attempt.
	KindCloneFailed Kind = "CLONE_FAILED"
	// KindHandlerFailed indicates a decorated handler gave up.
	KindHandlerFailed Kind = "HANDLER_FAILED"
	// KindTransportFailed indicates the transport could not complete the exchange.
	KindTransportFailed Kind = "TRANSPORT_FAILED"
	// KindRateLimited indicates a permit could not be acquired.
	KindRateLimited Kind = "RATE_LIMITED"
	// KindCircuitOpen indicates a circuit breaker rejected the call.
	KindCircuitOpen Kind = "CIRCUIT_OPEN"
	// KindUnexpectedStatus indicates a response status was rejected by a handler.
	KindUnexpectedStatus Kind = "UNEXPECTED_STATUS"
)

// Post-call kinds.
const (
	// KindProcessFailed indicates the process step failed on a raw response.
	KindProcessFailed Kind = "PROCESS_FAILED"
	// KindRefineFailed indicates the refine step failed on a processed value.
	KindRefineFailed Kind = "REFINE_FAILED"
)

// KindInvalidConfig indicates a construction-time configuration error.
const KindInvalidConfig Kind = "INVALID_CONFIG"

var retryableKinds = map[Kind]bool{
	KindTransportFailed: true,
	KindRateLimited:     true,
	KindHandlerFailed:   false,
	KindCloneFailed:     false,
}

// IsRetryableKind returns true if an error of this kind may succeed when repeated.
func IsRetryableKind(kind Kind) bool {
	return retryableKinds[kind]
}

// IsBuildKind reports whether the kind means the request was never sent.
func IsBuildKind(kind Kind) bool {
	switch kind {
	case KindTemplateSyntax, KindResourceNotFound, KindResourceFailed, KindCapabilityFailed, KindBuildFailed:
		return true
	default:
		return false
	}
}
