// Package helpcenter provides the shared domain layer of the help-center
// backend: categories, guides with rich-text content, guide-owned media, and
// user feedback.
//
// Two independently deployed API surfaces (a public GraphQL API and a
// private REST editor API) call into one Service. The Service owns every
// cross-entity invariant: slug uniqueness per entity namespace, exclusive
// media ownership with cascade deletion, and transactional consistency
// between a guide and its media set. Blob-store side effects stay outside
// relational transactions and are compensated best-effort.
//
// Construct a Service with functional options:
//
//	svc, err := helpcenter.New(
//	    helpcenter.WithRepository(repo),
//	    helpcenter.WithBlobStore(store),
//	)
package helpcenter
