package mongo

import (
	"context"
	"testing"
)

func TestConnect_InvalidURIRejected(t *testing.T) {
	if _, _, err := Connect(context.Background(), Config{URI: "://not-a-uri"}); err == nil {
		t.Fatalf("expected error for malformed URI")
	}
}
