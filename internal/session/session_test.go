package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIdentity_Owns(t *testing.T) {
	id := Identity{UserID: uuid.New()}

	assert.True(t, id.Owns(id.UserID))
	assert.False(t, id.Owns(uuid.New()))
	assert.False(t, Identity{}.Owns(uuid.Nil))
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	want := Identity{UserID: uuid.New(), Email: "a@example.com"}
	got, ok := FromContext(IntoContext(context.Background(), want))
	assert.True(t, ok)
	assert.Equal(t, want, got)
}
