package audit

import (
	"context"
	"encoding/json"
	"log"
)

type annotationKey struct{}

// Annotation carries details that only the handler knows into the entry the audit middleware writes.
type Annotation struct {
	UserID   string
	Metadata string
}

// WithAnnotation returns a context carrying an empty annotation and a pointer to it.
// The middleware reads the annotation back after the handler returns.
func WithAnnotation(ctx context.Context) (context.Context, *Annotation) {
	a := &Annotation{}
	return context.WithValue(ctx, annotationKey{}, a), a
}

// Annotate sets the user and metadata on the request's annotation, if any.
// metadata is encoded as a JSON object; empty userID leaves the principal unchanged.
func Annotate(ctx context.Context, userID string, metadata map[string]string) {
	a, ok := ctx.Value(annotationKey{}).(*Annotation)
	if !ok || a == nil {
		return
	}
	if userID != "" {
		a.UserID = userID
	}
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err != nil {
			log.Printf("audit: encode annotation: %v", err)
			return
		}
		a.Metadata = string(b)
	}
}
