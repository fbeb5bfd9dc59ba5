package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title string `json:"title" validate:"required,min=3" msg:"Title must have at least 3 characters"`
	Price string `json:"price" validate:"required,price"`
}

func TestValidate_CollectsFieldMessages(t *testing.T) {
	err := Struct(&sample{Title: "ab", Price: "-1"})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalid))

	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 2)
	assert.Equal(t, "title", verrs[0].Field)
	assert.Equal(t, "Title must have at least 3 characters", verrs[0].Message)
	assert.Equal(t, "Title must have at least 3 characters", verrs.First())
	assert.True(t, verrs.Has("price"))
	assert.Equal(t, "Invalid value for price.", verrs[1].Message)
}

func TestValidate_Price(t *testing.T) {
	require.NoError(t, Struct(&sample{Title: "abc", Price: "19.99"}))
	require.NoError(t, Struct(&sample{Title: "abc", Price: "0"}))
	require.Error(t, Struct(&sample{Title: "abc", Price: "abc"}))
}
