package core

import "github.com/m-mizutani/goerr/v2"

// Failure tags. Only embedding and retrieval failures abort a turn;
// backend and attachment failures degrade to a best-effort response.
var (
	TagEmbeddingFailure = goerr.NewTag("embedding_failure")
	TagRetrievalFailure = goerr.NewTag("retrieval_failure")
	TagBackendTransport = goerr.NewTag("backend_transport")
	TagBackendBadStatus = goerr.NewTag("backend_bad_status")
	TagAttachmentFetch  = goerr.NewTag("attachment_fetch")
)

func NewEmbeddingError(cause error, msg string) error {
	return goerr.Wrap(cause, msg, goerr.T(TagEmbeddingFailure))
}

func NewRetrievalError(cause error, msg string) error {
	return goerr.Wrap(cause, msg, goerr.T(TagRetrievalFailure))
}

func NewBackendTransportError(cause error, msg string) error {
	return goerr.Wrap(cause, msg, goerr.T(TagBackendTransport))
}

func NewBackendStatusError(msg string, opts ...goerr.Option) error {
	opts = append(opts, goerr.T(TagBackendBadStatus))
	return goerr.New(msg, opts...)
}

func IsEmbeddingFailure(err error) bool { return goerr.HasTag(err, TagEmbeddingFailure) }
func IsRetrievalFailure(err error) bool { return goerr.HasTag(err, TagRetrievalFailure) }

// IsBackendFailure covers both transport-level errors and non-success
// statuses; the router treats them identically.
func IsBackendFailure(err error) bool {
	return goerr.HasTag(err, TagBackendTransport) || goerr.HasTag(err, TagBackendBadStatus)
}
